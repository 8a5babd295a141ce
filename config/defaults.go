package config

const (
	defaultAPIVersion = "2023-03-15-preview"
	defaultPanelAddr  = "127.0.0.1:8217"
	// DefaultEndpoint is the placeholder shown to users before onboarding.
	DefaultEndpoint = "https://myresource.openai.azure.com/"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	logDefaults := defaultLoggingConfig()
	return &Config{
		Azure: AzureConfig{
			Endpoint:   DefaultEndpoint,
			APIVersion: defaultAPIVersion,
		},
		Panel: PanelConfig{
			Addr: defaultPanelAddr,
		},
		Logging: logDefaults,
	}
}

func defaultLoggingConfig() LoggingConfig {
	enabled := true
	return LoggingConfig{
		Enabled: &enabled,
		Level:   "info",
		Stdout:  false,
		File:    "logs/chatpanel.log",
	}
}

func (c *Config) applyDefaults() {
	if c.Azure.APIVersion == "" {
		c.Azure.APIVersion = defaultAPIVersion
	}
	if c.Panel.Addr == "" {
		c.Panel.Addr = defaultPanelAddr
	}
	logDefaults := defaultLoggingConfig()
	if c.Logging.Enabled == nil {
		c.Logging.Enabled = logDefaults.Enabled
	}
	if c.Logging.Level == "" {
		c.Logging.Level = logDefaults.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = logDefaults.File
	}
}
