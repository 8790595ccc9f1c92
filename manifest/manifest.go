// Package manifest handles weft.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "weft.toml"

// Manifest represents a weft.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Source  Source        `toml:"source"`
	VM      VMConfig      `toml:"vm"`
	History HistoryConfig `toml:"history"`

	// Dir is the directory containing the weft.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Entry string `toml:"entry"`
}

// VMConfig configures execution.
type VMConfig struct {
	Trace bool `toml:"trace"`
}

// HistoryConfig configures the REPL history store.
type HistoryConfig struct {
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// Load parses a weft.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	m.Dir = dir
	return &m, nil
}

// LoadIfPresent loads a manifest when the directory has one, and returns a
// zero-value manifest otherwise.
func LoadIfPresent(dir string) (*Manifest, error) {
	if _, err := os.Stat(filepath.Join(dir, FileName)); os.IsNotExist(err) {
		return &Manifest{Dir: dir}, nil
	}
	return Load(dir)
}

// EntryPath returns the absolute path of the configured entry file, or ""
// when no entry is configured.
func (m *Manifest) EntryPath() string {
	if m.Source.Entry == "" {
		return ""
	}
	if filepath.IsAbs(m.Source.Entry) {
		return m.Source.Entry
	}
	return filepath.Join(m.Dir, m.Source.Entry)
}
