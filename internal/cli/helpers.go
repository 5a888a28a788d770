package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pymovements/gazeseg/internal/config"
	"github.com/pymovements/gazeseg/internal/events"
	"github.com/pymovements/gazeseg/internal/storage"
)

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// readJSON decodes the JSON document at path into dst. An empty path leaves dst
// untouched.
func readJSON(path string, stdin io.Reader, dst any) error {
	if path == "" {
		return nil
	}
	data, err := readInput(path, stdin)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// profilePath prefers the --profile flag over the environment.
func profilePath(globals *GlobalFlags, fallback string) string {
	if globals != nil && globals.Profile != "" {
		return globals.Profile
	}
	return fallback
}

// loadLibrary builds the detector library from the detection profile at path.
func loadLibrary(path string) (*events.Library, error) {
	profile, err := config.LoadDetectionProfile(path)
	if err != nil {
		return nil, err
	}
	return events.NewLibrary(profile.Blink, profile.OutOfScreen), nil
}

// openRepository returns the event store selected by cfg.Storage.
func openRepository(cfg config.Config) (events.Repository, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return storage.Open(cfg.SQLitePath)
	case config.StorageMemory, "":
		return events.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage: %s", cfg.Storage)
	}
}
