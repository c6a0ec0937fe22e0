package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prefs represents persisted console preferences.
type Prefs struct {
	SourceMode   string `yaml:"source_mode,omitempty"`
	ArtifactKind string `yaml:"artifact_kind,omitempty"`
	Theme        string `yaml:"theme,omitempty"`
}

// Load reads preferences from path. A missing or unreadable file yields
// zero-value prefs so the console always starts.
func Load(path string) Prefs {
	var p Prefs
	b, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Prefs{}
	}
	p.SourceMode = strings.TrimSpace(p.SourceMode)
	p.ArtifactKind = strings.TrimSpace(p.ArtifactKind)
	p.Theme = strings.TrimSpace(p.Theme)
	return p
}

// Save writes p to path atomically.
func Save(path string, p Prefs) error {
	if path == "" {
		return errors.New("prefs path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}
