// Package project reads and writes zephyr.toml, the per-project config
// `zr init` scaffolds. The teacher has no config file of its own to
// imitate here; grounded on the wider pack's config-loading examples,
// which reach for github.com/BurntSushi/toml for exactly this kind of
// small, flat TOML document.
package project

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/zephyrlang/zr/internal/diagnostics"
)

// Config is the shape of zephyr.toml.
type Config struct {
	Project ProjectSection `toml:"project"`
}

type ProjectSection struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

const ConfigFileName = "zephyr.toml"

// Load reads and parses a zephyr.toml from dir.
func Load(dir string) (*Config, error) {
	path := dir + string(os.PathSeparator) + ConfigFileName
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, diagnostics.New(diagnostics.KindFile, "failed to read %s: %v", path, err)
	}
	return &cfg, nil
}

// Write serializes cfg as zephyr.toml inside dir.
func Write(dir string, cfg *Config) error {
	path := dir + string(os.PathSeparator) + ConfigFileName
	f, err := os.Create(path)
	if err != nil {
		return diagnostics.New(diagnostics.KindFile, "failed to create %s: %v", path, err)
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return diagnostics.New(diagnostics.KindFile, "failed to write %s: %v", path, err)
	}
	return nil
}
