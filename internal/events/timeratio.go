package events

import (
	"encoding/json"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var errSamplingRateNegative = errors.New("sampling_rate must be non-negative")

// EventTimeRatio returns the share of the recorded time span covered by events
// labeled name. Both the event durations and the span are widened by one sampling
// interval so that inclusive offsets count their last sample. The interval is
// 1000/samplingRate milliseconds, or the most common time delta when samplingRate
// is 0. A recording without a positive span yields NaN.
func EventTimeRatio(table Table, time []float64, name string, samplingRate float64) (float64, error) {
	if err := checkSamplingRate(samplingRate); err != nil {
		return 0, err
	}

	relevant := table.Filter(name)
	if len(relevant) == 0 {
		return 0, nil
	}
	if len(time) == 0 {
		return math.NaN(), nil
	}
	if len(time) == 1 {
		return singleSampleRatio(relevant, time[0]), nil
	}
	return coverageRatio(relevant, time, samplingInterval(time, samplingRate)), nil
}

// TrialRatio is the event time ratio of a single trial.
type TrialRatio struct {
	Trial map[string]any
	Ratio float64
}

// MarshalJSON renders an undefined ratio as null.
func (r TrialRatio) MarshalJSON() ([]byte, error) {
	var ratio *float64
	if !math.IsNaN(r.Ratio) && !math.IsInf(r.Ratio, 0) {
		ratio = &r.Ratio
	}
	return json.Marshal(struct {
		Trial map[string]any `json:"trial"`
		Ratio *float64       `json:"ratio"`
	}{r.Trial, ratio})
}

// EventTimeRatioByTrial computes EventTimeRatio separately for every trial in
// trials, in order of first appearance. Each event counts toward the trial named by
// its Attrs. The sampling interval is shared by all trials. Trials without events
// get 0.
func EventTimeRatioByTrial(table Table, time []float64, trials TrialColumns, name string, samplingRate float64) ([]TrialRatio, error) {
	if err := checkSamplingRate(samplingRate); err != nil {
		return nil, err
	}
	groups, _, err := trials.groupSamples(len(time))
	if err != nil {
		return nil, err
	}

	byTrial := make(map[string]Table)
	for i, event := range table {
		if name != "" && event.Name != name {
			continue
		}
		key, err := trials.eventKey(event, i)
		if err != nil {
			return nil, err
		}
		byTrial[key] = append(byTrial[key], event)
	}

	dt := 0.0
	if len(time) > 1 {
		dt = samplingInterval(time, samplingRate)
	}
	ratios := make([]TrialRatio, len(groups))
	for i, group := range groups {
		ratios[i] = TrialRatio{Trial: copyValues(group.values)}
		relevant := byTrial[group.key]
		if len(relevant) == 0 {
			continue
		}
		if len(time) == 1 {
			ratios[i].Ratio = singleSampleRatio(relevant, time[0])
			continue
		}
		trialTime := make([]float64, len(group.samples))
		for j, sample := range group.samples {
			trialTime[j] = time[sample]
		}
		ratios[i].Ratio = coverageRatio(relevant, trialTime, dt)
	}
	return ratios, nil
}

func checkSamplingRate(samplingRate float64) error {
	if samplingRate < 0 || math.IsNaN(samplingRate) {
		return invalid(errSamplingRateNegative, "got %v", samplingRate)
	}
	return nil
}

func singleSampleRatio(relevant Table, at float64) float64 {
	for _, event := range relevant {
		if event.Onset <= at && at <= event.Offset {
			return 1
		}
	}
	return 0
}

// samplingInterval needs at least two timestamps when samplingRate is 0.
func samplingInterval(time []float64, samplingRate float64) float64 {
	if samplingRate > 0 {
		return 1000 / samplingRate
	}
	deltas := make([]float64, len(time)-1)
	floats.SubTo(deltas, time[1:], time[:len(time)-1])
	dt, _ := stat.Mode(deltas, nil)
	return dt
}

func coverageRatio(relevant Table, time []float64, dt float64) float64 {
	covered := 0.0
	for _, event := range relevant {
		covered += event.Duration() + dt
	}
	span := floats.Max(time) - floats.Min(time) + dt
	if !(span > 0) {
		return math.NaN()
	}
	return covered / span
}
