package config

import (
	"fmt"
)

// Config holds the settings of the nestkv command line client.
type Config struct {
	LogLevel string `toml:"log-level"`

	// Prompt is printed before each input line in interactive mode.
	Prompt string `toml:"prompt"`
	// HistoryFile persists readline history between runs. Empty disables it.
	HistoryFile string `toml:"history-file"`

	// BaseDegree is the btree degree of the store's base layer.
	BaseDegree int `toml:"base-degree"`
}

var DefaultConf = Config{
	LogLevel:    "info",
	Prompt:      "nestkv> ",
	HistoryFile: "",
	BaseDegree:  32,
}

func (c *Config) Validate() error {
	if c.BaseDegree < 2 {
		return fmt.Errorf("base-degree must be at least 2, got %d", c.BaseDegree)
	}
	switch c.LogLevel {
	case "fatal", "error", "warning", "warn", "info", "debug":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
