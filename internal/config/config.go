package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/nodekeeper/internal/models"
)

// Config holds runtime settings for nodekeeper.
type Config struct {
	DatabasePath string
	KeyFilePath  string
	Network      models.Network
	LogLevel     string
	LogFormat    string
}

// LoadDefaults places the database and key file in the user config
// directory, falling back to the working directory.
func (c *Config) LoadDefaults() {
	dir := "."
	if base, err := os.UserConfigDir(); err == nil {
		dir = filepath.Join(base, "nodekeeper")
	}

	c.DatabasePath = filepath.Join(dir, "nodekeeper.db")
	c.KeyFilePath = filepath.Join(dir, "nodekeeper.key")
	c.Network = models.NetworkMainnet
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.KeyFilePath == "" {
		return fmt.Errorf("key file path is empty")
	}
	if !c.Network.Valid() {
		return fmt.Errorf("unknown network %q", c.Network)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if requested) and command-line flags. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
