// Package defaults loads the bundled default-server resource.
//
// The resource is a YAML mapping whose values are [protocolType, address,
// port] sequences. A mapping has no order of its own, so entries are read
// from the document node tree and returned in the order they appear in the
// file.
package defaults

import (
	"embed"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nodekeeper/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed mainnet.yaml testnet.yaml
var files embed.FS

var ErrUnknownNetwork = errors.New("unknown network")

// Source provides the default servers for a network.
type Source interface {
	Servers(network models.Network) ([]models.ServerSpec, error)
}

// Embedded is the Source compiled into the binary.
type Embedded struct{}

func (Embedded) Servers(network models.Network) ([]models.ServerSpec, error) {
	if !network.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
	data, err := files.ReadFile(string(network) + ".yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Static is a fixed Source, used where the bundled lists are not wanted.
type Static map[models.Network][]models.ServerSpec

func (s Static) Servers(network models.Network) ([]models.ServerSpec, error) {
	specs, ok := s[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
	return specs, nil
}

// Parse decodes a default-server document, preserving entry order.
func Parse(data []byte) ([]models.ServerSpec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse default servers: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("default servers: expected a mapping at line %d", root.Line)
	}

	specs := make([]models.ServerSpec, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, value := root.Content[i], root.Content[i+1]

		var triple []string
		if err := value.Decode(&triple); err != nil {
			return nil, fmt.Errorf("default server %q: %w", name.Value, err)
		}
		if len(triple) != 3 {
			return nil, fmt.Errorf("default server %q: want [protocol, address, port], got %d fields", name.Value, len(triple))
		}
		specs = append(specs, models.ServerSpec{ProtocolType: triple[0], Address: triple[1], Port: triple[2]})
	}
	return specs, nil
}
