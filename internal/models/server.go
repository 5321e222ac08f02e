// Package models defines the data types shared by nodekeeper's repositories
// and services.
package models

// Network selects which bundled default-server list applies.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// Valid reports whether n is a known network.
func (n Network) Valid() bool {
	return n == NetworkMainnet || n == NetworkTestnet
}

// ServerRecord is one endpoint in the registry. Address is its identity and
// is compared case-sensitively.
type ServerRecord struct {
	Address      string
	ProtocolType string
	Port         string

	// IsDefault marks records installed from the bundled default list.
	IsDefault bool
}

// ServerSpec is a (protocol, address, port) triple read from the default
// server resource.
type ServerSpec struct {
	ProtocolType string
	Address      string
	Port         string
}

// Record turns the spec into a default ServerRecord.
func (s ServerSpec) Record() ServerRecord {
	return ServerRecord{Address: s.Address, ProtocolType: s.ProtocolType, Port: s.Port, IsDefault: true}
}
