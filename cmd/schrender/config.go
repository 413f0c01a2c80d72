package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// renderConfig is the resolved tool configuration: defaults, overlaid by
// the optional TOML file, overlaid by flags.
type renderConfig struct {
	Renderer string
	Part     int
	Output   string
	Title    string
	Date     string
	Strict   bool
	Verbose  bool
}

func defaultConfig() renderConfig {
	return renderConfig{Renderer: "svg"}
}

// fileConfig is the config.toml key mapping.
type fileConfig struct {
	Renderer string `toml:"renderer"`
	Part     int    `toml:"part"`
	Output   string `toml:"output"`
	Title    string `toml:"title"`
	Date     string `toml:"date"`
	Strict   bool   `toml:"strict"`
	Verbose  bool   `toml:"verbose"`
}

// loadConfig overlays the file's keys on cfg. Only keys actually present
// in the file override, so a config file can set just one option.
func loadConfig(path string, cfg renderConfig) (renderConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return renderConfig{}, fmt.Errorf("load config: %w", err)
	}
	if meta.IsDefined("renderer") {
		cfg.Renderer = strings.TrimSpace(raw.Renderer)
	}
	if meta.IsDefined("part") {
		cfg.Part = raw.Part
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.TrimSpace(raw.Output)
	}
	if meta.IsDefined("title") {
		cfg.Title = raw.Title
	}
	if meta.IsDefined("date") {
		cfg.Date = strings.TrimSpace(raw.Date)
	}
	if meta.IsDefined("strict") {
		cfg.Strict = raw.Strict
	}
	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}
	return cfg, cfg.validate()
}

func (c renderConfig) validate() error {
	if c.Renderer != "svg" {
		return fmt.Errorf("load config: unsupported renderer %q (expected svg)", c.Renderer)
	}
	if c.Part < 0 {
		return fmt.Errorf("load config: part must not be negative")
	}
	return nil
}
