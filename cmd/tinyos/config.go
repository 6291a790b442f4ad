package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config holds the flags the scenario runner needs, optionally overridden
// from a JSON file via -c, mirroring the teacher's flat Config struct and
// parseJSONConfig override.
type Config struct {
	Scenario  string `json:"scenario"`
	Timeout   int    `json:"timeout"`
	CloseWait int    `json:"closewait"`
	Quiet     bool   `json:"quiet"`
}

// parseJSONConfig overlays cfg with the contents of path.
func parseJSONConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config file")
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "parsing config file")
	}
	return nil
}
