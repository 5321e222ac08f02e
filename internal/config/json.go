package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/nodekeeper/internal/flagx"
	"github.com/dmitrijs2005/nodekeeper/internal/models"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	DatabasePath string `json:"database_path"`
	KeyFilePath  string `json:"key_file_path"`
	Network      string `json:"network"`
	LogLevel     string `json:"log_level"`
	LogFormat    string `json:"log_format"`
}

// parseJson overlays cfg with the non-empty values of the file named by
// -c/-config. Without such a flag cfg is left alone.
func parseJson(cfg *Config, args []string) error {
	path, err := flagx.ConfigPath(args)
	if err != nil {
		return fmt.Errorf("config flag: %w", err)
	}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.KeyFilePath, jc.KeyFilePath)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.LogFormat, jc.LogFormat)
	if jc.Network != "" {
		cfg.Network = models.Network(jc.Network)
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
