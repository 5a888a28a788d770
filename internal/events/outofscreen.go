package events

import "errors"

const DefaultOutOfScreenName = "out_of_screen"

var (
	errPixelsRequired = errors.New("pixels are required")
	errPixelsShape    = errors.New("pixels must have shape (N, 2)")
	errScreenXBounds  = errors.New("x_min must be less than x_max")
	errScreenYBounds  = errors.New("y_min must not exceed y_max")
)

// OutOfScreenConfig holds the screen area in pixels. Minimum bounds are inclusive,
// maximum bounds exclusive: a 1920x1080 screen is XMax=1920, YMax=1080.
type OutOfScreenConfig struct {
	XMin float64 `json:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max"`
	Name string  `json:"name" yaml:"name"`
}

func (c OutOfScreenConfig) Validate() error {
	if !(c.XMin < c.XMax) {
		return invalid(errScreenXBounds, "got x_min=%v and x_max=%v", c.XMin, c.XMax)
	}
	if !(c.YMin <= c.YMax) {
		return invalid(errScreenYBounds, "got y_min=%v and y_max=%v", c.YMin, c.YMax)
	}
	return nil
}

// Contains reports whether the point lies on screen. NaN coordinates count as on
// screen since they carry no position to judge.
func (c OutOfScreenConfig) Contains(x, y float64) bool {
	return !(x < c.XMin || x >= c.XMax || y < c.YMin || y >= c.YMax)
}

// DetectOutOfScreen groups consecutive samples whose gaze falls outside the screen
// into events. Every run is kept, a single sample included.
func DetectOutOfScreen(pixels [][]float64, timesteps []float64, cfg OutOfScreenConfig) (Table, error) {
	if pixels == nil {
		return nil, invalid(errPixelsRequired, "got nil")
	}
	for i, row := range pixels {
		if len(row) != 2 {
			return nil, invalid(errPixelsShape, "row %d has %d columns", i, len(row))
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if timesteps != nil && len(timesteps) != len(pixels) {
		return nil, invalid(errTimestepsLength, "pixels has %d rows, timesteps has %d", len(pixels), len(timesteps))
	}
	name := cfg.Name
	if name == "" {
		name = DefaultOutOfScreenName
	}
	timesteps = sampleTimesteps(len(pixels), timesteps)

	outside := make([]bool, len(pixels))
	for i, row := range pixels {
		outside[i] = !cfg.Contains(row[0], row[1])
	}

	table := Table{}
	for _, run := range Consecutive(flaggedIndices(outside, true)) {
		table = append(table, Event{
			Name:   name,
			Onset:  timesteps[run[0]],
			Offset: timesteps[run[len(run)-1]],
		})
	}
	return table, nil
}
