package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownDetector is returned when no detector is registered under a name.
var ErrUnknownDetector = errors.New("unknown event detection method")

var errDetectorParams = errors.New("detector params must be a JSON object")

// Samples bundles the sample columns a detector may read. Pupil holds NaN for
// missing values; Pixel holds one (x, y) row per sample.
type Samples struct {
	Time  []float64
	Pupil []float64
	Pixel [][]float64
}

// Detector runs one detection method over samples. params is a JSON object with the
// method's configuration; fields it leaves out keep their defaults.
type Detector func(samples Samples, params json.RawMessage) (Table, error)

// Library resolves detection methods by name.
type Library struct {
	detectors map[string]Detector
}

// NewLibrary registers the blink and out-of-screen methods with blink and screen as
// their base configuration.
func NewLibrary(blink BlinkConfig, screen OutOfScreenConfig) *Library {
	return &Library{
		detectors: map[string]Detector{
			DefaultBlinkName: func(samples Samples, params json.RawMessage) (Table, error) {
				return DetectBlinksWith(blink, samples, params)
			},
			DefaultOutOfScreenName: func(samples Samples, params json.RawMessage) (Table, error) {
				return DetectOutOfScreenWith(screen, samples, params)
			},
		},
	}
}

func DefaultLibrary() *Library {
	return NewLibrary(DefaultBlinkConfig(), OutOfScreenConfig{Name: DefaultOutOfScreenName})
}

// Register adds or replaces the detector stored under name.
func (l *Library) Register(name string, detector Detector) {
	l.detectors[name] = detector
}

func (l *Library) Lookup(name string) (Detector, error) {
	detector, ok := l.detectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDetector, name)
	}
	return detector, nil
}

// Names lists the registered methods in lexical order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.detectors))
	for name := range l.detectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectBlinksWith overlays params on base and runs DetectBlinks on the pupil column.
func DetectBlinksWith(base BlinkConfig, samples Samples, params json.RawMessage) (Table, error) {
	cfg := base.clone()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return DetectBlinks(samples.Pupil, samples.Time, cfg)
}

// DetectOutOfScreenWith overlays params on base and runs DetectOutOfScreen on the
// pixel column.
func DetectOutOfScreenWith(base OutOfScreenConfig, samples Samples, params json.RawMessage) (Table, error) {
	cfg := base
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return DetectOutOfScreen(samples.Pixel, samples.Time, cfg)
}

func decodeParams(params json.RawMessage, dst any) error {
	params = bytes.TrimSpace(params)
	if len(params) == 0 || bytes.Equal(params, []byte("null")) {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(params))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return invalid(errDetectorParams, "%v", err)
	}
	return nil
}
