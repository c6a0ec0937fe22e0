// Package config loads the console's TOML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// BackendURLEnv overrides backend.url when set.
const BackendURLEnv = "ANCHOR_BACKEND_URL"

// Backend describes how to reach the media-generation service.
type Backend struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
	SOCKS5Proxy    string `toml:"socks5_proxy"`
}

// Topics bounds the topic registry.
type Topics struct {
	MaxTopics int `toml:"max_topics"`
}

// Progress controls the cosmetic milestone pacing in the console.
type Progress struct {
	TickMillis int `toml:"tick_millis"`
}

// Paths holds directories the console writes to.
type Paths struct {
	ArtifactDir string `toml:"artifact_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
}

// History toggles the attempt log.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains log level settings.
type Logging struct {
	Level string `toml:"level"`
}

// Config is the full console configuration.
type Config struct {
	Backend  Backend  `toml:"backend"`
	Topics   Topics   `toml:"topics"`
	Progress Progress `toml:"progress"`
	Paths    Paths    `toml:"paths"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Overrides are command-line values that take precedence over the
// environment and the file. Empty fields are ignored.
type Overrides struct {
	BackendURL string
	LogLevel   string
}

// Load reads path (or the default location when empty), applies the
// environment override and then ov, normalizes paths and validates the
// result once. A missing file is not an error; exists reports whether one
// was read.
func Load(path string, ov Overrides) (cfg *Config, resolved string, exists bool, err error) {
	c := Default()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := toml.NewDecoder(file).Decode(&c); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if v, ok := os.LookupEnv(BackendURLEnv); ok && strings.TrimSpace(v) != "" {
		c.Backend.URL = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(ov.BackendURL); v != "" {
		c.Backend.URL = v
	}
	if v := strings.TrimSpace(ov.LogLevel); v != "" {
		c.Logging.Level = v
	}

	if err := c.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := c.Validate(); err != nil {
		return nil, "", false, err
	}
	return &c, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

// BackendTimeout returns the per-call deadline.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// ProgressInterval returns the delay between milestone ticks.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Progress.TickMillis) * time.Millisecond
}

// HistoryPath is the SQLite file used for the attempt log.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// PrefsPath is the file holding persisted console preferences.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.Paths.StateDir, "prefs.yaml")
}

// ThemePath is the optional colour override file.
func (c *Config) ThemePath() string {
	return filepath.Join(c.Paths.StateDir, "theme.json")
}

// EnsureDirectories creates the directories the console writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath exposes the home-directory expansion rules for other packages.
func ExpandPath(p string) (string, error) {
	return expandPath(p)
}

func expandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if p == "~" {
			p = home
		} else if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
			p = filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}
