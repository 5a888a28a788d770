package cli

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pymovements/gazeseg/internal/events"
)

// Execute implements the go-flags Commander interface for EncodeCommand.
func (c *EncodeCommand) Execute(args []string) error {
	data, err := readInput(c.Input, c.streams.in)
	if err != nil {
		return err
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse events: %w", err)
	}
	table, err := events.FromRecords(records, c.OnsetColumn, c.OffsetColumn)
	if err != nil {
		return err
	}
	var trials events.TrialColumns
	if err := readJSON(c.Trials, c.streams.in, &trials); err != nil {
		return err
	}

	segmentation, warnings, err := events.EventsToSegmentation(table, c.NumSamples, events.SegmentationOptions{
		PadBefore: c.PadBefore,
		PadAfter:  c.PadAfter,
		Name:      c.Name,
		Trials:    trials,
	})
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		fmt.Fprintf(c.streams.errOut, "warning: %s\n", warning)
	}

	return json.NewEncoder(c.streams.out).Encode(segmentation)
}

// Execute implements the go-flags Commander interface for DecodeCommand.
func (c *DecodeCommand) Execute(args []string) error {
	data, err := readInput(c.Input, c.streams.in)
	if err != nil {
		return err
	}

	values, err := events.ParseSegmentation(data)
	if err != nil {
		return err
	}
	var opts events.DecodeOptions
	if err := readJSON(c.Time, c.streams.in, &opts.Time); err != nil {
		return err
	}
	if err := readJSON(c.Trials, c.streams.in, &opts.Trials); err != nil {
		return err
	}
	table, err := events.SegmentationToEvents(values, c.Name, opts)
	if err != nil {
		return err
	}
	return writeJSON(c.streams.out, table)
}

// Execute implements the go-flags Commander interface for RatioCommand.
func (c *RatioCommand) Execute(args []string) error {
	var records []map[string]any
	if err := readJSON(c.Events, c.streams.in, &records); err != nil {
		return err
	}
	table, err := events.FromRecords(records, "", "")
	if err != nil {
		return err
	}
	var time []float64
	if err := readJSON(c.Time, c.streams.in, &time); err != nil {
		return err
	}
	var trials events.TrialColumns
	if err := readJSON(c.Trials, c.streams.in, &trials); err != nil {
		return err
	}

	if len(trials) > 0 {
		ratios, err := events.EventTimeRatioByTrial(table, time, trials, c.Name, c.SamplingRate)
		if err != nil {
			return err
		}
		return writeJSON(c.streams.out, ratios)
	}

	ratio, err := events.EventTimeRatio(table, time, c.Name, c.SamplingRate)
	if err != nil {
		return err
	}
	if math.IsNaN(ratio) {
		return writeJSON(c.streams.out, nil)
	}
	return writeJSON(c.streams.out, ratio)
}
