// Package config loads runtime configuration for nodekeeper.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   path to the SQLite database
//	-k string   path to the sealing key file
//	-n string   network whose default servers are installed (mainnet, testnet)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Every field is optional; absent fields keep the default:
//
//	{
//	  "database_path": "/var/lib/nodekeeper/nodekeeper.db",
//	  "key_file_path": "/var/lib/nodekeeper/nodekeeper.key",
//	  "network": "testnet",
//	  "log_level": "debug",
//	  "log_format": "json"
//	}
package config
