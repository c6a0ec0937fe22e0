package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/interpretive-systems/anchor/internal/artifacts"
	"github.com/interpretive-systems/anchor/internal/backend"
	"github.com/interpretive-systems/anchor/internal/config"
	"github.com/interpretive-systems/anchor/internal/history"
	"github.com/interpretive-systems/anchor/internal/logger"
	"github.com/interpretive-systems/anchor/internal/session"
)

const envHint = config.BackendURLEnv

type globalFlags struct {
	config   string
	backend  string
	logLevel string
}

// commandContext loads configuration once and builds the services a command
// needs.
type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config), config.Overrides{
			BackendURL: c.flags.backend,
			LogLevel:   c.flags.logLevel,
		})
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// setupLogging installs the file logger and, when console is non-nil, a text
// sink on it.
func (c *commandContext) setupLogging(console io.Writer) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	return logger.Setup(logger.Options{Dir: cfg.Paths.LogDir, Level: cfg.Logging.Level, Console: console})
}

// openSession builds the backend client, stores and session from config.
func (c *commandContext) openSession(ctx context.Context) (*session.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := backend.New(backend.Config{
		BaseURL:     cfg.Backend.URL,
		Timeout:     cfg.BackendTimeout(),
		UserAgent:   cfg.Backend.UserAgent,
		SOCKS5Proxy: cfg.Backend.SOCKS5Proxy,
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	opts := session.Options{
		MaxTopics: cfg.Topics.MaxTopics,
		Backend:   client,
		Artifacts: artifacts.New(cfg.Paths.ArtifactDir),
	}
	if cfg.History.Enabled {
		store, err := history.Open(ctx, cfg.HistoryPath())
		if err != nil {
			logger.Warnf("history disabled: %v", err)
		} else {
			logger.Debugf("history store: %s", store.Path())
			opts.History = store
		}
	}
	logger.Infof("session ready: backend %s, max topics %d", client.BaseURL(), cfg.Topics.MaxTopics)
	return session.New(opts), nil
}
