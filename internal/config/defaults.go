package config

const (
	defaultConfigPath     = "~/.config/anchor/config.toml"
	defaultBackendURL     = "http://localhost:1234"
	defaultTimeoutSeconds = 300
	defaultUserAgent      = "anchor-console/dev"
	defaultMaxTopics      = 1
	defaultTickMillis     = 1500
	defaultArtifactDir    = "~/Music/anchor"
	defaultStateDir       = "~/.local/share/anchor"
	defaultLogDir         = "~/.local/share/anchor/logs"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		Backend: Backend{
			URL:            defaultBackendURL,
			TimeoutSeconds: defaultTimeoutSeconds,
			UserAgent:      defaultUserAgent,
		},
		Topics: Topics{
			MaxTopics: defaultMaxTopics,
		},
		Progress: Progress{
			TickMillis: defaultTickMillis,
		},
		Paths: Paths{
			ArtifactDir: defaultArtifactDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
