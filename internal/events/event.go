package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument marks every precondition violation in this package.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	errColumnNotFound    = errors.New("column not found in events")
	errColumnNotTime     = errors.New("column must hold a numeric time value")
	errOnsetOffsetLength = errors.New("onsets and offsets must have the same length")
)

const (
	DefaultOnsetColumn  = "onset"
	DefaultOffsetColumn = "offset"
)

// Event is one labeled time interval. Detectors emit inclusive onset and offset
// timestamps; segmentation treats the offset as exclusive.
type Event struct {
	Name   string         `json:"name"`
	Onset  float64        `json:"onset"`
	Offset float64        `json:"offset"`
	Attrs  map[string]any `json:"attrs,omitempty"`
}

func (e Event) Duration() float64 {
	return e.Offset - e.Onset
}

// MarshalJSON renders an unlabeled event with a null name.
func (e Event) MarshalJSON() ([]byte, error) {
	var name *string
	if e.Name != "" {
		name = &e.Name
	}
	return json.Marshal(struct {
		Name   *string        `json:"name"`
		Onset  float64        `json:"onset"`
		Offset float64        `json:"offset"`
		Attrs  map[string]any `json:"attrs,omitempty"`
	}{name, e.Onset, e.Offset, e.Attrs})
}

// Table is an ordered sequence of events in detection order.
type Table []Event

// NewTable zips onsets and offsets into events sharing one name.
func NewTable(name string, onsets, offsets []float64) (Table, error) {
	if len(onsets) != len(offsets) {
		return nil, invalid(errOnsetOffsetLength, "got %d onsets and %d offsets", len(onsets), len(offsets))
	}
	table := make(Table, len(onsets))
	for i := range onsets {
		table[i] = Event{Name: name, Onset: onsets[i], Offset: offsets[i]}
	}
	return table, nil
}

func (t Table) Onsets() []float64 {
	onsets := make([]float64, len(t))
	for i, e := range t {
		onsets[i] = e.Onset
	}
	return onsets
}

func (t Table) Offsets() []float64 {
	offsets := make([]float64, len(t))
	for i, e := range t {
		offsets[i] = e.Offset
	}
	return offsets
}

func (t Table) Durations() []float64 {
	durations := make([]float64, len(t))
	for i, e := range t {
		durations[i] = e.Duration()
	}
	return durations
}

func (t Table) TotalDuration() float64 {
	total := 0.0
	for _, e := range t {
		total += e.Duration()
	}
	return total
}

// Filter returns the events labeled name. An empty name keeps every event.
func (t Table) Filter(name string) Table {
	filtered := make(Table, 0, len(t))
	for _, e := range t {
		if name == "" || e.Name == name {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// FromRecords builds a table from row records as they arrive from upstream tooling.
// Onset and offset are read from the named columns; the "name" column becomes the
// label and every other column is kept in Attrs.
func FromRecords(records []map[string]any, onsetColumn, offsetColumn string) (Table, error) {
	if onsetColumn == "" {
		onsetColumn = DefaultOnsetColumn
	}
	if offsetColumn == "" {
		offsetColumn = DefaultOffsetColumn
	}

	table := make(Table, 0, len(records))
	for i, record := range records {
		onset, err := timeColumn(record, onsetColumn, i)
		if err != nil {
			return nil, err
		}
		offset, err := timeColumn(record, offsetColumn, i)
		if err != nil {
			return nil, err
		}

		event := Event{Onset: onset, Offset: offset}
		for key, value := range record {
			switch key {
			case onsetColumn, offsetColumn:
				continue
			case "name":
				if label, ok := value.(string); ok {
					event.Name = label
				}
				continue
			}
			if event.Attrs == nil {
				event.Attrs = make(map[string]any)
			}
			event.Attrs[key] = value
		}
		table = append(table, event)
	}
	return table, nil
}

func timeColumn(record map[string]any, column string, row int) (float64, error) {
	raw, ok := record[column]
	if !ok {
		return 0, invalid(errColumnNotFound, "%q (row %d)", column, row)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, invalid(errColumnNotTime, "%q (row %d): %v", column, row, err)
		}
		return f, nil
	default:
		return 0, invalid(errColumnNotTime, "%q (row %d) has %T", column, row, raw)
	}
}

// invalid wraps both ErrInvalidArgument and the specific sentinel, so callers can
// match either one with errors.Is.
func invalid(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidArgument, sentinel, fmt.Sprintf(format, args...))
}

func isIntegral(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v == math.Trunc(v)
}
