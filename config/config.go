// Package config handles configuration loading and saving.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"chatpanel/logger"
)

const (
	configDirName  = ".chatpanel"
	configFileName = "config.yaml"
)

var configDirOverride string

// SetConfigDir overrides the config directory for the current process.
// Empty value clears the override.
func SetConfigDir(dir string) {
	configDirOverride = strings.TrimSpace(dir)
}

// Config is the root configuration structure.
type Config struct {
	Azure   AzureConfig   `json:"azure" yaml:"azure"`
	Panel   PanelConfig   `json:"panel,omitempty" yaml:"panel,omitempty"`
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// AzureConfig contains the Azure OpenAI connection settings.
type AzureConfig struct {
	Endpoint       string `json:"endpoint" yaml:"endpoint"`                         // base URL, e.g. https://myresource.openai.azure.com/
	APIKey         string `json:"apiKey" yaml:"apiKey"`                             // sent as the api-key header
	DeploymentName string `json:"deploymentName" yaml:"deploymentName"`             // selects the hosted model deployment
	APIVersion     string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"` // defaults to 2023-03-15-preview
}

// PanelConfig contains the browser panel settings.
type PanelConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // default: 127.0.0.1:8217
	Open *bool  `json:"open,omitempty" yaml:"open,omitempty"` // auto-open browser, default true
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Stdout  bool   `json:"stdout,omitempty" yaml:"stdout,omitempty"` // log to the terminal
	File    string `json:"file,omitempty" yaml:"file,omitempty"`     // log file path
}

// Dir returns the config directory, creating nothing.
func Dir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file, applies defaults, and overlays environment
// variables. A missing config file is not an error; the environment alone
// can provide a complete configuration.
func Load() (*Config, error) {
	// Best-effort .env for local development; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{}

	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env overlay
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config file, creating the config directory if needed.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	logger.Info("config saved", "path", path)
	return nil
}

// applyEnv overlays environment variables on top of file values. The
// environment wins so deployments can inject credentials without a file.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("AZURE_OPENAI_ENDPOINT")); v != "" {
		c.Azure.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("AZURE_OPENAI_API_KEY")); v != "" {
		c.Azure.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME")); v != "" {
		c.Azure.DeploymentName = v
	}
	if v := strings.TrimSpace(os.Getenv("AZURE_OPENAI_API_VERSION")); v != "" {
		c.Azure.APIVersion = v
	}
}

// Validate checks that all settings required for a network call are present.
// apiVersion is exempt because it carries a default.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Azure.Endpoint) == "" {
		missing = append(missing, "endpoint")
	}
	if strings.TrimSpace(c.Azure.APIKey) == "" {
		missing = append(missing, "apiKey")
	}
	if strings.TrimSpace(c.Azure.DeploymentName) == "" {
		missing = append(missing, "deploymentName")
	}
	if len(missing) > 0 {
		return errors.New("missing required settings: " + strings.Join(missing, ", ") +
			" (run `chatpanel onboard` or set the AZURE_OPENAI_* environment variables)")
	}
	return nil
}

// OpenBrowser reports whether the panel URL should be opened automatically.
func (c *Config) OpenBrowser() bool {
	if c.Panel.Open == nil {
		return true
	}
	return *c.Panel.Open
}

// BuildLoggerConfig converts the logging section into logger settings.
func (c *Config) BuildLoggerConfig() logger.Config {
	enabled := true
	if c.Logging.Enabled != nil {
		enabled = *c.Logging.Enabled
	}
	return logger.Config{
		Enabled: enabled,
		Level:   c.Logging.Level,
		Stdout:  c.Logging.Stdout,
		File:    c.Logging.File,
	}
}
