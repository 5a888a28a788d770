package events

import (
	"errors"
	"math"
	"sort"
)

const (
	DefaultBlinkName = "blink"

	defaultMaxValueRun     = 3
	defaultNasAroundRun    = 2
	defaultMinimumDuration = 50
	defaultMaximumDuration = 500

	// deltaPercentile and deltaScale estimate the noise threshold when none is given.
	deltaPercentile = 95
	deltaScale      = 5.0
)

var (
	errTimestepsLength          = errors.New("timesteps must match the signal length")
	errBlinkDeltaNonPositive    = errors.New("delta must be positive")
	errBlinkMaxValueRunNegative = errors.New("max_value_run must be non-negative")
	errBlinkNasAroundNegative   = errors.New("nas_around_run must be non-negative")
	errBlinkMinimumDuration     = errors.New("minimum_duration must be at least 1")
	errBlinkMaximumDuration     = errors.New("maximum_duration must be at least 1")
	errBlinkDurationOrder       = errors.New("maximum_duration must be >= minimum_duration")
)

// BlinkConfig parameterizes DetectBlinks. Delta and MaximumDuration are optional:
// a nil Delta is estimated from the signal and a nil MaximumDuration disables the
// upper bound. Durations are in timestep units.
type BlinkConfig struct {
	Delta           *float64 `json:"delta" yaml:"delta"`
	MaxValueRun     int      `json:"max_value_run" yaml:"max_value_run"`
	NasAroundRun    int      `json:"nas_around_run" yaml:"nas_around_run"`
	MinimumDuration float64  `json:"minimum_duration" yaml:"minimum_duration"`
	MaximumDuration *float64 `json:"maximum_duration" yaml:"maximum_duration"`
	Name            string   `json:"name" yaml:"name"`
}

func DefaultBlinkConfig() BlinkConfig {
	maximum := float64(defaultMaximumDuration)
	return BlinkConfig{
		MaxValueRun:     defaultMaxValueRun,
		NasAroundRun:    defaultNasAroundRun,
		MinimumDuration: defaultMinimumDuration,
		MaximumDuration: &maximum,
		Name:            DefaultBlinkName,
	}
}

// clone copies the optional fields so decoding into the copy leaves c untouched.
func (c BlinkConfig) clone() BlinkConfig {
	if c.Delta != nil {
		delta := *c.Delta
		c.Delta = &delta
	}
	if c.MaximumDuration != nil {
		maximum := *c.MaximumDuration
		c.MaximumDuration = &maximum
	}
	return c
}

func (c BlinkConfig) Validate() error {
	if c.Delta != nil && !(*c.Delta > 0) {
		return invalid(errBlinkDeltaNonPositive, "got %v", *c.Delta)
	}
	if c.MaxValueRun < 0 {
		return invalid(errBlinkMaxValueRunNegative, "got %d", c.MaxValueRun)
	}
	if c.NasAroundRun < 0 {
		return invalid(errBlinkNasAroundNegative, "got %d", c.NasAroundRun)
	}
	if !(c.MinimumDuration >= 1) {
		return invalid(errBlinkMinimumDuration, "got %v", c.MinimumDuration)
	}
	if c.MaximumDuration != nil {
		if !(*c.MaximumDuration >= 1) {
			return invalid(errBlinkMaximumDuration, "got %v", *c.MaximumDuration)
		}
		if *c.MaximumDuration < c.MinimumDuration {
			return invalid(errBlinkDurationOrder, "got maximum_duration=%v < minimum_duration=%v", *c.MaximumDuration, c.MinimumDuration)
		}
	}
	return nil
}

// DetectBlinks finds blinks in a pupil size signal in two stages.
//
// Flagging marks samples that are NaN or zero, and both samples of every pair whose
// absolute difference exceeds the delta threshold. Island absorption then flags short
// runs of valid samples enclosed by enough flagged samples on both sides. Flagged runs
// whose duration lies within [MinimumDuration, MaximumDuration] become events with
// inclusive onset and offset timestamps.
func DetectBlinks(pupil, timesteps []float64, cfg BlinkConfig) (Table, error) {
	if timesteps != nil && len(timesteps) != len(pupil) {
		return nil, invalid(errTimestepsLength, "pupil has %d samples, timesteps has %d", len(pupil), len(timesteps))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = DefaultBlinkName
	}
	if len(pupil) == 0 {
		return Table{}, nil
	}
	timesteps = sampleTimesteps(len(pupil), timesteps)

	flagged := flagPupil(pupil, cfg.Delta)
	if cfg.MaxValueRun > 0 {
		absorbIslands(flagged, cfg.MaxValueRun, cfg.NasAroundRun)
	}

	table := Table{}
	for _, run := range Consecutive(flaggedIndices(flagged, true)) {
		onset := timesteps[run[0]]
		offset := timesteps[run[len(run)-1]]
		duration := offset - onset
		if duration < cfg.MinimumDuration {
			continue
		}
		if cfg.MaximumDuration != nil && duration > *cfg.MaximumDuration {
			continue
		}
		table = append(table, Event{Name: name, Onset: onset, Offset: offset})
	}
	return table, nil
}

// flagPupil marks missing samples and both ends of every jump larger than delta.
// A nil delta is estimated from the finite absolute differences.
func flagPupil(pupil []float64, delta *float64) []bool {
	flagged := make([]bool, len(pupil))
	for i, v := range pupil {
		flagged[i] = math.IsNaN(v) || v == 0
	}
	if len(pupil) < 2 {
		return flagged
	}

	diffs := make([]float64, len(pupil)-1)
	finite := make([]float64, 0, len(diffs))
	nonMissing := 0
	for i := range diffs {
		d := math.Abs(pupil[i+1] - pupil[i])
		diffs[i] = d
		if math.IsNaN(d) {
			continue
		}
		nonMissing++
		if !math.IsInf(d, 0) {
			finite = append(finite, d)
		}
	}

	var threshold float64
	switch {
	case delta != nil:
		threshold = *delta
	case len(finite) > 0:
		threshold = deltaScale * percentile(finite, deltaPercentile)
	default:
		return flagged
	}
	if nonMissing == 0 {
		return flagged
	}

	for i, d := range diffs {
		// NaN compares false, so gaps never exceed on their own.
		if d > threshold {
			flagged[i] = true
			flagged[i+1] = true
		}
	}
	return flagged
}

// absorbIslands flags unflagged runs of at most maxValueRun samples that have at
// least nasAroundRun flagged samples in the windows directly before and after them.
// Runs are visited in order and see the absorptions made before them.
func absorbIslands(flagged []bool, maxValueRun, nasAroundRun int) {
	n := len(flagged)
	for _, run := range Consecutive(flaggedIndices(flagged, false)) {
		if len(run) > maxValueRun {
			continue
		}
		start := run[0]
		end := run[len(run)-1]

		before := countFlagged(flagged, max(0, start-nasAroundRun), start)
		after := countFlagged(flagged, end+1, min(n, end+1+nasAroundRun))
		if before < nasAroundRun || after < nasAroundRun {
			continue
		}
		for _, i := range run {
			flagged[i] = true
		}
	}
}

func countFlagged(flagged []bool, from, to int) int {
	count := 0
	for i := from; i < to; i++ {
		if flagged[i] {
			count++
		}
	}
	return count
}

// percentile computes the q-th percentile of values with linear interpolation
// between the closest ranks, matching numpy's default method.
func percentile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	position := q / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(position))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	gamma := position - float64(lower)
	a, b := sorted[lower], sorted[lower+1]
	if gamma >= 0.5 {
		return b - (b-a)*(1-gamma)
	}
	return a + (b-a)*gamma
}
