package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadTopology reads and validates the topology YAML. Both roles must be
// present with a non-empty address; a deployment without either side has
// nothing to validate, so this is checked up front and treated as a setup
// failure by callers.
func loadTopology(path string) (*topology, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	topo := &topology{}
	if err := yaml.Unmarshal(b, topo); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if topo.Domain == "" {
		return nil, errors.New("topology.domain is required")
	}
	for _, role := range []string{roleServer, roleClient} {
		r, ok := topo.Roles[role]
		if !ok {
			return nil, fmt.Errorf("topology.roles.%s is required", role)
		}
		if strings.TrimSpace(r.Address) == "" {
			return nil, fmt.Errorf("topology.roles.%s.address is required", role)
		}
	}
	return topo, nil
}
