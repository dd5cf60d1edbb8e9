package schedule

import (
	"testing"
	"time"
)

func TestNormalizeTimezoneAlias(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"  Madrid ":       "Europe/Madrid",
		"Canarias":        "Atlantic/Canary",
		"Europe/Madrid":   "Europe/Madrid",
		"America/Bogota": "America/Bogota",
	}

	for in, want := range tests {
		if got := NormalizeTimezone(in); got != want {
			t.Errorf("NormalizeTimezone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC, got %v, %v", loc, err)
	}

	loc, err = LoadLocation("Madrid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loc.String() != "Europe/Madrid" {
		t.Fatalf("expected Europe/Madrid, got %s", loc)
	}

	if _, err := LoadLocation("Mars/Olympus"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}
