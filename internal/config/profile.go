package config

import (
	"fmt"
	"os"

	"github.com/pymovements/gazeseg/internal/events"

	"gopkg.in/yaml.v3"
)

// DetectionProfile holds the detector defaults used when a request leaves a
// parameter out.
type DetectionProfile struct {
	Blink       events.BlinkConfig       `yaml:"blink"`
	OutOfScreen events.OutOfScreenConfig `yaml:"out_of_screen"`
}

func DefaultDetectionProfile() DetectionProfile {
	return DetectionProfile{
		Blink: events.DefaultBlinkConfig(),
		OutOfScreen: events.OutOfScreenConfig{
			Name: events.DefaultOutOfScreenName,
		},
	}
}

// LoadDetectionProfile reads a YAML profile and merges it over the defaults. An
// empty path returns the defaults. The blink section is validated; the screen
// bounds are validated per request, since they usually come with the recording.
func LoadDetectionProfile(path string) (DetectionProfile, error) {
	profile := DefaultDetectionProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DetectionProfile{}, fmt.Errorf("read detection profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return DetectionProfile{}, fmt.Errorf("parse detection profile %s: %w", path, err)
	}
	if err := profile.Blink.Validate(); err != nil {
		return DetectionProfile{}, fmt.Errorf("detection profile %s: blink: %w", path, err)
	}
	return profile, nil
}
