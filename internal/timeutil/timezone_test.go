package timeutil

import (
	"testing"
	"time"
)

func TestLoadTimezone(t *testing.T) {
	for _, name := range []string{"", "Local"} {
		loc, err := LoadTimezone(name)
		if err != nil || loc != time.Local {
			t.Errorf("LoadTimezone(%q) = %v, %v; want Local", name, loc, err)
		}
	}

	loc, err := LoadTimezone("UTC")
	if err != nil || loc != time.UTC {
		t.Errorf("LoadTimezone(UTC) = %v, %v", loc, err)
	}

	if _, err := LoadTimezone("Mars/Olympus_Mons"); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestFormatIn(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if got := FormatIn(ts, time.UTC); got != "2024-03-01 12:30:00 UTC" {
		t.Errorf("FormatIn = %q", got)
	}

	fixed := time.FixedZone("CET", 3600)
	if got := FormatIn(ts, fixed); got != "2024-03-01 13:30:00 CET" {
		t.Errorf("FormatIn = %q", got)
	}
}
