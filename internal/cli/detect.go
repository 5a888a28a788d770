package cli

import (
	"encoding/json"
	"fmt"

	"github.com/pymovements/gazeseg/internal/config"
	"github.com/pymovements/gazeseg/internal/events"
)

// Execute implements the go-flags Commander interface for DetectCommand.
func (c *DetectCommand) Execute(args []string) error {
	library, err := loadLibrary(profilePath(c.globals, config.DetectionProfilePath()))
	if err != nil {
		return err
	}
	return c.executeWithLibrary(library)
}

func (c *DetectCommand) executeWithLibrary(library *events.Library) error {
	detector, err := library.Lookup(c.Method)
	if err != nil {
		return err
	}

	data, err := readInput(c.Input, c.streams.in)
	if err != nil {
		return err
	}
	var columns events.SampleColumns
	if err := json.Unmarshal(data, &columns); err != nil {
		return fmt.Errorf("parse samples: %w", err)
	}

	var params json.RawMessage
	if c.Params != "" {
		params = json.RawMessage(c.Params)
	}

	table, err := detector(columns.Samples(), params)
	if err != nil {
		return err
	}
	return writeJSON(c.streams.out, table)
}
