package events

import (
	"encoding/json"
	"errors"
	"math"
)

var (
	errSegmentationNotArray = errors.New("segmentation must be a JSON array")
	errSegmentationNot1D    = errors.New("segmentation must be a 1D array")
	errSegmentationElement  = errors.New("segmentation must contain integers")
)

// SampleColumns is the JSON form of Samples. JSON has no NaN, so missing pupil
// sizes and coordinates are written as null.
type SampleColumns struct {
	Time  []float64    `json:"time"`
	Pupil []*float64   `json:"pupil"`
	Pixel [][]*float64 `json:"pixel"`
}

// Samples converts the columns, turning null values into NaN.
func (p SampleColumns) Samples() Samples {
	samples := Samples{Time: p.Time}
	if p.Pupil != nil {
		samples.Pupil = make([]float64, len(p.Pupil))
		for i, v := range p.Pupil {
			samples.Pupil[i] = valueOrNaN(v)
		}
	}
	if p.Pixel != nil {
		samples.Pixel = make([][]float64, len(p.Pixel))
		for i, row := range p.Pixel {
			decoded := make([]float64, len(row))
			for j, v := range row {
				decoded[j] = valueOrNaN(v)
			}
			samples.Pixel[i] = decoded
		}
	}
	return samples
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// ParseSegmentation reads a flat JSON array of integers or booleans. Whether the
// values are binary is checked by SegmentationToEvents.
func ParseSegmentation(raw []byte) ([]int64, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil || elements == nil {
		return nil, invalid(errSegmentationNotArray, "got %.32q", raw)
	}

	values := make([]int64, len(elements))
	for i, element := range elements {
		var v any
		if err := json.Unmarshal(element, &v); err != nil {
			return nil, invalid(errSegmentationElement, "index %d: %v", i, err)
		}
		switch typed := v.(type) {
		case bool:
			if typed {
				values[i] = 1
			}
		case float64:
			if typed != math.Trunc(typed) {
				return nil, invalid(errSegmentationNotBinary, "found %v at index %d", typed, i)
			}
			values[i] = int64(typed)
		case []any:
			return nil, invalid(errSegmentationNot1D, "found a nested array at index %d", i)
		default:
			return nil, invalid(errSegmentationElement, "found %T at index %d", v, i)
		}
	}
	return values, nil
}
