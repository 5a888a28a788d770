package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pymovements/gazeseg/internal/events"
)

func TestLoadDetectionProfileEmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	profile, err := LoadDetectionProfile("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	blink := profile.Blink
	if blink.Delta != nil {
		t.Fatalf("expected estimated delta, got %v", *blink.Delta)
	}
	if blink.MaxValueRun != 3 || blink.NasAroundRun != 2 {
		t.Fatalf("expected island defaults (3, 2), got (%d, %d)", blink.MaxValueRun, blink.NasAroundRun)
	}
	if blink.MinimumDuration != 50 {
		t.Fatalf("expected minimum duration 50, got %v", blink.MinimumDuration)
	}
	if blink.MaximumDuration == nil || *blink.MaximumDuration != 500 {
		t.Fatalf("expected maximum duration 500, got %v", blink.MaximumDuration)
	}
	if profile.OutOfScreen.Name != events.DefaultOutOfScreenName {
		t.Fatalf("expected out-of-screen name %q, got %q", events.DefaultOutOfScreenName, profile.OutOfScreen.Name)
	}
}

func TestLoadDetectionProfileMergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := writeProfile(t, `
blink:
  delta: 12.5
  minimum_duration: 20
  name: lid_closure
out_of_screen:
  x_max: 1920
  y_max: 1080
`)

	profile, err := LoadDetectionProfile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	blink := profile.Blink
	if blink.Delta == nil || *blink.Delta != 12.5 {
		t.Fatalf("expected delta 12.5, got %v", blink.Delta)
	}
	if blink.MinimumDuration != 20 {
		t.Fatalf("expected minimum duration 20, got %v", blink.MinimumDuration)
	}
	if blink.Name != "lid_closure" {
		t.Fatalf("expected name %q, got %q", "lid_closure", blink.Name)
	}
	if blink.MaxValueRun != 3 {
		t.Fatalf("expected default max value run 3, got %d", blink.MaxValueRun)
	}
	if blink.MaximumDuration == nil || *blink.MaximumDuration != 500 {
		t.Fatalf("expected default maximum duration 500, got %v", blink.MaximumDuration)
	}

	screen := profile.OutOfScreen
	if screen.XMax != 1920 || screen.YMax != 1080 {
		t.Fatalf("expected screen 1920x1080, got %vx%v", screen.XMax, screen.YMax)
	}
	if screen.Name != events.DefaultOutOfScreenName {
		t.Fatalf("expected default out-of-screen name, got %q", screen.Name)
	}
}

func TestLoadDetectionProfileRejectsInvalidBlinkSection(t *testing.T) {
	t.Parallel()

	path := writeProfile(t, "blink:\n  minimum_duration: 0\n")

	_, err := LoadDetectionProfile(path)
	if !errors.Is(err, events.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
}

func TestLoadDetectionProfileRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeProfile(t, "blink: [unclosed\n")

	if _, err := LoadDetectionProfile(path); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestLoadDetectionProfileMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadDetectionProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}
