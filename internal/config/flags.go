package config

import (
	"fmt"

	"github.com/dmitrijs2005/nodekeeper/internal/flagx"
	"github.com/dmitrijs2005/nodekeeper/internal/models"
)

// parseFlags overrides cfg with -d, -k, -n and -l. Other flags in args are
// ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flagx.NewFlagSet("nodekeeper")

	network := string(cfg.Network)
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the SQLite database")
	fs.StringVar(&cfg.KeyFilePath, "k", cfg.KeyFilePath, "path to the sealing key file")
	fs.StringVar(&network, "n", network, "network: mainnet or testnet")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, "d", "k", "n", "l")); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.Network = models.Network(network)
	return nil
}
