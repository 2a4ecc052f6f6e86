package profiler

import (
	"errors"
	"strings"
	"testing"
)

func TestParseModality(t *testing.T) {
	tests := []struct {
		in   string
		want Modality
	}{
		{"PHOTON", Photon},
		{"photon", Photon},
		{"Photon", Photon},
		{" electron ", Electron},
		{"ELECTRON", Electron},
		{"eLeCtRoN", Electron},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModality(tt.in)
			if err != nil {
				t.Fatalf("ParseModality(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseModality(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseModality_Invalid(t *testing.T) {
	for _, in := range []string{"", "proton", "photons", "X-RAY", "6MV"} {
		_, err := ParseModality(in)
		if !errors.Is(err, ErrInvalidModality) {
			t.Fatalf("ParseModality(%q) error = %v, want ErrInvalidModality", in, err)
		}
		msg := err.Error()
		if !strings.Contains(msg, "PHOTON") || !strings.Contains(msg, "ELECTRON") {
			t.Errorf("error message %q should name both accepted values", msg)
		}
	}
}

func TestModality_Windows(t *testing.T) {
	tests := []struct {
		m      Modality
		ab, gt Window
	}{
		{Photon, Window{12, 51}, Window{12, 53}},
		{Electron, Window{16, 46}, Window{16, 48}},
	}
	for _, tt := range tests {
		t.Run(tt.m.String(), func(t *testing.T) {
			ab, gt, err := tt.m.Windows()
			if err != nil {
				t.Fatal(err)
			}
			if ab != tt.ab || gt != tt.gt {
				t.Errorf("Windows() = %v %v, want %v %v", ab, gt, tt.ab, tt.gt)
			}
		})
	}

	if _, _, err := Modality(0).Windows(); !errors.Is(err, ErrInvalidModality) {
		t.Errorf("zero modality: error = %v, want ErrInvalidModality", err)
	}
	if _, _, err := Modality(7).AngleRange(); !errors.Is(err, ErrInvalidModality) {
		t.Errorf("unknown modality: error = %v, want ErrInvalidModality", err)
	}
}

func TestFrameAngle(t *testing.T) {
	tests := []struct {
		name      string
		m         Modality
		frame     int
		numFrames int
		want      float64
	}{
		{"photon midpoint", Photon, 180, 360, 0},
		{"photon start", Photon, 0, 360, -180},
		{"photon end", Photon, 360, 360, 180},
		{"photon quarter", Photon, 90, 360, -90},
		{"electron midpoint", Electron, 50, 100, 0},
		{"electron end", Electron, 100, 100, 120},
		{"electron start", Electron, 0, 100, -120},
		{"photon 22 of 30", Photon, 22, 30, 84},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FrameAngle(tt.m, tt.frame, tt.numFrames)
			if err != nil {
				t.Fatal(err)
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("FrameAngle = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := FrameAngle(Photon, 1, 0); err == nil {
		t.Error("expected error for zero-frame arc")
	}
}
