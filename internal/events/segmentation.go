package events

import (
	"errors"
	"fmt"
)

var (
	errNumSamplesNegative    = errors.New("num_samples must be non-negative")
	errPaddingNegative       = errors.New("padding must be non-negative")
	errEventBoundNegative    = errors.New("onset and offset must be non-negative")
	errEventBoundNotIndex    = errors.New("onset and offset must be integral sample indices")
	errEventOnsetAfterOffset = errors.New("onset must be less than offset")
	errEventOffsetTooLarge   = errors.New("offset must not exceed num_samples")
	errSegmentationNotBinary = errors.New("segmentation must only contain binary values (0, 1)")
	errTimeLength            = errors.New("time must match the segmentation length")
)

// Segmentation is a dense per-sample mask: 1 where at least one event covers the
// sample, 0 elsewhere.
type Segmentation []int32

func (s Segmentation) Sum() int {
	total := 0
	for _, v := range s {
		total += int(v)
	}
	return total
}

// Integer is any integer element kind a segmentation mask may be stored in.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// SegmentationOptions widens every event by PadBefore samples before its onset and
// PadAfter samples after its offset. Padded intervals are clipped to the mask.
//
// A non-empty Name keeps only events with that label; unlabeled events always
// count. With Trials set, onsets and offsets index the samples of the event's own
// trial, and only those samples are marked.
type SegmentationOptions struct {
	PadBefore int          `json:"pad_before" yaml:"pad_before"`
	PadAfter  int          `json:"pad_after" yaml:"pad_after"`
	Name      string       `json:"name" yaml:"name"`
	Trials    TrialColumns `json:"trials" yaml:"trials"`
}

// Warning reports a data-quality issue that did not stop processing.
type Warning struct {
	Onset   int    `json:"onset"`
	Offset  int    `json:"offset"`
	Trial   string `json:"trial,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// EventsToSegmentation writes every event interval [onset, offset) into a mask of
// numSamples entries. Onsets and offsets are sample indices. Overlapping events are
// allowed: each event that touches an already covered sample adds a Warning, or,
// with trials, the first such event of each trial does.
func EventsToSegmentation(table Table, numSamples int, opts SegmentationOptions) (Segmentation, []Warning, error) {
	if numSamples < 0 {
		return nil, nil, invalid(errNumSamplesNegative, "got %d", numSamples)
	}
	if opts.PadBefore < 0 || opts.PadAfter < 0 {
		return nil, nil, invalid(errPaddingNegative, "got (%d, %d)", opts.PadBefore, opts.PadAfter)
	}

	relevant := table
	if opts.Name != "" {
		relevant = make(Table, 0, len(table))
		for _, event := range table {
			if event.Name == "" || event.Name == opts.Name {
				relevant = append(relevant, event)
			}
		}
	}
	for i, event := range relevant {
		if err := checkIndexBounds(event, i); err != nil {
			return nil, nil, err
		}
	}
	if len(opts.Trials) > 0 {
		return trialSegmentation(relevant, numSamples, opts)
	}

	type span struct{ start, end int }
	spans := make([]span, len(relevant))
	for i, event := range relevant {
		if event.Offset > float64(numSamples) {
			return nil, nil, invalid(errEventOffsetTooLarge, "event %d has offset=%v with num_samples=%d", i, event.Offset, numSamples)
		}
		spans[i] = span{
			start: max(0, int(event.Onset)-opts.PadBefore),
			end:   min(numSamples, int(event.Offset)+opts.PadAfter),
		}
	}

	segmentation := make(Segmentation, numSamples)
	var warnings []Warning
	for _, s := range spans {
		overlapping := false
		for i := s.start; i < s.end; i++ {
			if segmentation[i] == 1 {
				overlapping = true
			}
			segmentation[i] = 1
		}
		if overlapping {
			warnings = append(warnings, Warning{
				Onset:   s.start,
				Offset:  s.end,
				Message: fmt.Sprintf("overlapping events detected between %d and %d", s.start, s.end),
			})
		}
	}
	return segmentation, warnings, nil
}

func checkIndexBounds(event Event, row int) error {
	if !isIntegral(event.Onset) || !isIntegral(event.Offset) {
		return invalid(errEventBoundNotIndex, "event %d has onset=%v and offset=%v", row, event.Onset, event.Offset)
	}
	if event.Onset < 0 || event.Offset < 0 {
		return invalid(errEventBoundNegative, "event %d has onset=%v and offset=%v", row, event.Onset, event.Offset)
	}
	if event.Onset >= event.Offset {
		return invalid(errEventOnsetAfterOffset, "event %d has onset=%v and offset=%v", row, event.Onset, event.Offset)
	}
	return nil
}

func trialSegmentation(table Table, numSamples int, opts SegmentationOptions) (Segmentation, []Warning, error) {
	_, byKey, err := opts.Trials.groupSamples(numSamples)
	if err != nil {
		return nil, nil, err
	}

	type span struct {
		trial      *trialGroup
		start, end int
	}
	spans := make([]span, len(table))
	for i, event := range table {
		key, err := opts.Trials.eventKey(event, i)
		if err != nil {
			return nil, nil, err
		}
		trial, ok := byKey[key]
		if !ok {
			return nil, nil, invalid(errEventTrialUnknown, "event %d belongs to %s", i, key)
		}
		size := len(trial.samples)
		if event.Offset > float64(size) {
			return nil, nil, invalid(errEventOffsetTooLarge, "event %d has offset=%v with %d samples in %s", i, event.Offset, size, key)
		}
		spans[i] = span{
			trial: trial,
			start: max(0, int(event.Onset)-opts.PadBefore),
			end:   min(size, int(event.Offset)+opts.PadAfter),
		}
	}

	segmentation := make(Segmentation, numSamples)
	var warnings []Warning
	warned := make(map[string]bool)
	for _, s := range spans {
		overlapping := false
		for _, sample := range s.trial.samples[s.start:s.end] {
			if segmentation[sample] == 1 {
				overlapping = true
			}
			segmentation[sample] = 1
		}
		if overlapping && !warned[s.trial.key] {
			warned[s.trial.key] = true
			warnings = append(warnings, Warning{
				Onset:   s.start,
				Offset:  s.end,
				Trial:   s.trial.key,
				Message: fmt.Sprintf("overlapping events detected for trial %s between %d and %d", s.trial.key, s.start, s.end),
			})
		}
	}
	return segmentation, warnings, nil
}

// DecodeOptions attaches sample context to decoded events. With Time set, onset and
// offset are the timestamps of the first and last sample of each run. With Trials
// set, runs end at trial boundaries and every event carries its trial columns in
// Attrs.
type DecodeOptions struct {
	Time   []float64    `json:"time" yaml:"time"`
	Trials TrialColumns `json:"trials" yaml:"trials"`
}

// SegmentationToEvents turns every run of ones in segmentation into an event. Without
// Time in opts the onset is the inclusive index of the run's first sample and the
// offset the exclusive index after its last. All events carry name; an empty name
// leaves them unlabeled.
func SegmentationToEvents[T Integer](segmentation []T, name string, opts DecodeOptions) (Table, error) {
	for i, v := range segmentation {
		if v != 0 && v != 1 {
			return nil, invalid(errSegmentationNotBinary, "found %v at index %d", v, i)
		}
	}
	if opts.Time != nil && len(opts.Time) != len(segmentation) {
		return nil, invalid(errTimeLength, "got %d timestamps for %d samples", len(opts.Time), len(segmentation))
	}

	var trialOf []*trialGroup
	if len(opts.Trials) > 0 {
		groups, _, err := opts.Trials.groupSamples(len(segmentation))
		if err != nil {
			return nil, err
		}
		trialOf = make([]*trialGroup, len(segmentation))
		for _, group := range groups {
			for _, sample := range group.samples {
				trialOf[sample] = group
			}
		}
	}

	table := Table{}
	emit := func(start, end int) {
		event := Event{Name: name, Onset: float64(start), Offset: float64(end)}
		if opts.Time != nil {
			event.Onset, event.Offset = opts.Time[start], opts.Time[end-1]
		}
		if trialOf != nil {
			event.Attrs = copyValues(trialOf[start].values)
		}
		table = append(table, event)
	}

	onset := -1
	for i, v := range segmentation {
		if onset >= 0 && (v == 0 || (trialOf != nil && trialOf[i] != trialOf[onset])) {
			emit(onset, i)
			onset = -1
		}
		if v == 1 && onset < 0 {
			onset = i
		}
	}
	if onset >= 0 {
		emit(onset, len(segmentation))
	}
	return table, nil
}
