package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TFMV/chdriver/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout is the process-wide default for backend calls when the
// configuration does not set one.
const DefaultTimeout = 30 * time.Second

// Config describes one logical connection to an HTTP query backend.
// Treated as immutable after construction: the driver never writes to a
// Config it was handed, and reconnect replaces the whole connection state
// instead of patching fields.
type Config struct {
	Scheme   string        `yaml:"scheme"`
	Hostname string        `yaml:"hostname"`
	Port     int           `yaml:"port"`
	Database string        `yaml:"database"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a configuration pointing at a local backend
func DefaultConfig() *Config {
	return &Config{
		Scheme:   "http",
		Hostname: "localhost",
		Port:     8123,
		Database: "default",
		Timeout:  DefaultTimeout,
	}
}

// ApplyDefaults fills unset fields from DefaultConfig and returns the
// receiver for chaining
func (c *Config) ApplyDefaults() *Config {
	def := DefaultConfig()

	if c.Scheme == "" {
		c.Scheme = def.Scheme
	}
	if c.Hostname == "" {
		c.Hostname = def.Hostname
	}
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}

	return c
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	configPath := findConfigFile()

	if configPath != "" {
		return LoadFromFile(configPath)
	}

	return DefaultConfig(), nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ErrConfigFileReadFailed, err, "failed to read config file")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(ErrConfigFileParseFailed, err, "failed to parse config file")
	}

	return cfg.ApplyDefaults(), nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(ErrConfigFileMarshalFailed, err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(ErrConfigFileWriteFailed, err, "failed to write config file")
	}

	return nil
}

// findConfigFile searches for configuration file
func findConfigFile() string {
	// Check current directory
	if _, err := os.Stat("chdriver.yml"); err == nil {
		return "chdriver.yml"
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".chdriver", "chdriver.yml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	// Check /etc/chdriver
	if _, err := os.Stat("/etc/chdriver/chdriver.yml"); err == nil {
		return "/etc/chdriver/chdriver.yml"
	}

	return ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scheme != "http" && c.Scheme != "https" {
		return errors.Newf(ErrSchemeInvalid, "invalid scheme: %s", c.Scheme)
	}

	if c.Hostname == "" {
		return errors.New(ErrHostnameEmpty, "hostname cannot be empty")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return errors.Newf(ErrPortInvalid, "invalid port: %d", c.Port)
	}

	if c.Timeout < 0 {
		return errors.Newf(ErrTimeoutInvalid, "invalid timeout: %s", c.Timeout)
	}

	return nil
}

// BaseURL returns the derived backend address, trailing slash included.
// Computed from scratch on every call; the driver captures it once at
// connect time and keeps that copy for the connection's lifetime.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d/", c.Scheme, c.Hostname, c.Port)
}
