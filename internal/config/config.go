// Package config loads the ftplogin settings from an optional YAML file,
// an optional .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gonzalop/ftplogin/internal/logger"
)

// Environment variables read by ApplyEnv.
const (
	EnvAddress  = "FTP_CLIENT_SERVER_ADDRESS"
	EnvUsername = "FTP_CLIENT_USERNAME"
	EnvPassword = "FTP_CLIENT_PASSWORD"
	EnvTimeout  = "FTP_CLIENT_TIMEOUT"
)

// Config holds the connection target, credentials and logging settings.
type Config struct {
	// Address is the server's "host:port"
	Address string `yaml:"address"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Timeout bounds dialing and every control channel read or write
	Timeout time.Duration `yaml:"timeout"`

	Logging logger.Config `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Logging: logger.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from FTP_CLIENT_* and LOG_* variables.
func (c *Config) ApplyEnv() error {
	if addr := os.Getenv(EnvAddress); addr != "" {
		c.Address = addr
	}
	if user := os.Getenv(EnvUsername); user != "" {
		c.Username = user
	}
	if pass, ok := os.LookupEnv(EnvPassword); ok {
		c.Password = pass
	}
	if timeout := os.Getenv(EnvTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}

	c.Logging.ApplyEnv()
	return nil
}

// Validate reports the first missing or malformed setting.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("server address is required (%s)", EnvAddress)
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("server address %q: %w", c.Address, err)
	}
	if c.Username == "" {
		return fmt.Errorf("username is required (%s)", EnvUsername)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", c.Timeout)
	}
	return nil
}
