package events

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestDefaultLibraryNames(t *testing.T) {
	t.Parallel()

	got := DefaultLibrary().Names()
	want := []string{"blink", "out_of_screen"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected names %v, got %v", want, got)
	}
}

func TestLibraryLookupUnknownMethod(t *testing.T) {
	t.Parallel()

	_, err := DefaultLibrary().Lookup("saccade")
	if !errors.Is(err, ErrUnknownDetector) {
		t.Fatalf("expected error %v, got %v", ErrUnknownDetector, err)
	}
}

func TestLibraryRegisterAddsMethod(t *testing.T) {
	t.Parallel()

	library := DefaultLibrary()
	library.Register("noop", func(Samples, json.RawMessage) (Table, error) {
		return Table{}, nil
	})

	if _, err := library.Lookup("noop"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if names := library.Names(); len(names) != 3 {
		t.Fatalf("expected 3 methods, got %v", names)
	}
}

func TestBlinkDetectorOverlaysParams(t *testing.T) {
	t.Parallel()

	detector, err := DefaultLibrary().Lookup(DefaultBlinkName)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	samples := Samples{
		Time:  arange(0, 200),
		Pupil: pupilSignal(segment{10, 500}, segment{80, math.NaN()}, segment{110, 500}),
	}

	got, err := detector(samples, json.RawMessage(`{"name": "lid", "minimum_duration": 100}`))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected the 79 ms blink to be filtered, got %v", got)
	}

	got, err = detector(samples, json.RawMessage(`{"name": "lid"}`))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := named("lid", [2]float64{10, 89})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBlinkDetectorParamsDoNotLeakIntoBase(t *testing.T) {
	t.Parallel()

	base := DefaultBlinkConfig()
	samples := Samples{Pupil: pupilSignal(segment{10, 500})}

	if _, err := DetectBlinksWith(base, samples, json.RawMessage(`{"maximum_duration": 60}`)); err != nil {
		t.Fatalf("detect: %v", err)
	}
	if *base.MaximumDuration != 500 {
		t.Fatalf("expected base maximum duration 500, got %v", *base.MaximumDuration)
	}
}

func TestBlinkDetectorNullMaximumDurationDisablesBound(t *testing.T) {
	t.Parallel()

	samples := Samples{
		Time:  arange(0, 700),
		Pupil: pupilSignal(segment{10, 500}, segment{601, math.NaN()}, segment{89, 500}),
	}

	got, err := DetectBlinksWith(DefaultBlinkConfig(), samples, json.RawMessage(`{"maximum_duration": null, "max_value_run": 0}`))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := named("blink", [2]float64{10, 610})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDetectorRejectsBadParams(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params string
	}{
		{name: "unknown field", params: `{"threshold": 3}`},
		{name: "not an object", params: `[1, 2]`},
		{name: "wrong type", params: `{"max_value_run": "three"}`},
	}

	for _, tc := range cases {
		_, err := DetectBlinksWith(DefaultBlinkConfig(), Samples{Pupil: []float64{1}}, json.RawMessage(tc.params))
		if !errors.Is(err, errDetectorParams) {
			t.Fatalf("%s: expected error %v, got %v", tc.name, errDetectorParams, err)
		}
	}
}

func TestOutOfScreenDetectorUsesParams(t *testing.T) {
	t.Parallel()

	detector, err := DefaultLibrary().Lookup(DefaultOutOfScreenName)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	samples := Samples{Pixel: [][]float64{{-1, 540}, {960, 540}}}
	got, err := detector(samples, json.RawMessage(`{"x_max": 1920, "y_max": 1080}`))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := named("out_of_screen", [2]float64{0, 0})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := detector(samples, nil); !errors.Is(err, errScreenXBounds) {
		t.Fatalf("expected error %v without screen bounds, got %v", errScreenXBounds, err)
	}
}
