package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

func (c *Config) normalize() error {
	c.Backend.URL = strings.TrimRight(strings.TrimSpace(c.Backend.URL), "/")
	if c.Backend.URL == "" {
		c.Backend.URL = defaultBackendURL
	}
	c.Backend.UserAgent = strings.TrimSpace(c.Backend.UserAgent)
	if c.Backend.UserAgent == "" {
		c.Backend.UserAgent = defaultUserAgent
	}
	c.Backend.SOCKS5Proxy = strings.TrimSpace(c.Backend.SOCKS5Proxy)
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Topics.MaxTopics == 0 {
		c.Topics.MaxTopics = defaultMaxTopics
	}
	if c.Progress.TickMillis == 0 {
		c.Progress.TickMillis = defaultTickMillis
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	paths := []*string{&c.Paths.ArtifactDir, &c.Paths.StateDir, &c.Paths.LogDir}
	defaults := []string{defaultArtifactDir, defaultStateDir, defaultLogDir}
	for i, p := range paths {
		if strings.TrimSpace(*p) == "" {
			*p = defaults[i]
		}
		expanded, err := expandPath(strings.TrimSpace(*p))
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if c.Topics.MaxTopics < 1 {
		return errors.New("topics.max_topics must be at least 1")
	}
	if c.Progress.TickMillis < 50 || c.Progress.TickMillis > 10000 {
		return errors.New("progress.tick_millis must be between 50 and 10000")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateBackend() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url must use http or https, got %q", c.Backend.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend.url is missing a host: %q", c.Backend.URL)
	}
	if c.Backend.TimeoutSeconds < 1 {
		return errors.New("backend.timeout_seconds must be positive")
	}
	if c.Backend.SOCKS5Proxy != "" {
		if _, _, err := net.SplitHostPort(c.Backend.SOCKS5Proxy); err != nil {
			return fmt.Errorf("backend.socks5_proxy must be host:port: %w", err)
		}
	}
	return nil
}
