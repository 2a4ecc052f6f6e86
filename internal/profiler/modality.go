package profiler

import (
	"fmt"
	"strings"
)

// Modality is the beam particle type. It selects the analysis windows and the
// angular range an arc movie is mapped onto.
type Modality int

const (
	Photon Modality = iota + 1
	Electron
)

// Window is a half-open detector index range [Start, Stop).
type Window struct {
	Start int
	Stop  int
}

// Len returns the number of detectors in the window.
func (w Window) Len() int { return w.Stop - w.Start }

// ParseModality accepts "photon" or "electron" in any case.
func ParseModality(s string) (Modality, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PHOTON":
		return Photon, nil
	case "ELECTRON":
		return Electron, nil
	default:
		return 0, fmt.Errorf("%w (got %q)", ErrInvalidModality, s)
	}
}

// String returns the upper-case modality name.
func (m Modality) String() string {
	switch m {
	case Photon:
		return "PHOTON"
	case Electron:
		return "ELECTRON"
	default:
		return fmt.Sprintf("Modality(%d)", int(m))
	}
}

// Valid reports whether m is one of the two supported modalities.
func (m Modality) Valid() bool {
	return m == Photon || m == Electron
}

// Windows returns the AB and GT comparison windows. Photon fields are wider
// than electron fields, hence the wider windows.
func (m Modality) Windows() (ab, gt Window, err error) {
	switch m {
	case Photon:
		return Window{12, 51}, Window{12, 53}, nil
	case Electron:
		return Window{16, 46}, Window{16, 48}, nil
	default:
		return Window{}, Window{}, fmt.Errorf("%w (got %s)", ErrInvalidModality, m)
	}
}

// AngleRange returns the bipolar gantry range an arc movie spans.
func (m Modality) AngleRange() (start, stop float64, err error) {
	switch m {
	case Photon:
		return -180, 180, nil
	case Electron:
		return -120, 120, nil
	default:
		return 0, 0, fmt.Errorf("%w (got %s)", ErrInvalidModality, m)
	}
}

// FrameAngle maps a 1-based frame index onto the modality's bipolar angle
// range. The mapping is linear in frame/numFrames and is anchored at -stop.
func FrameAngle(m Modality, frame, numFrames int) (float64, error) {
	start, stop, err := m.AngleRange()
	if err != nil {
		return 0, err
	}
	if numFrames <= 0 {
		return 0, fmt.Errorf("%w: cannot map frame %d onto an arc of %d frames", ErrFrameIndexOutOfRange, frame, numFrames)
	}
	return (stop-start)*float64(frame)/float64(numFrames) - stop, nil
}
