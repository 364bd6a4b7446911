package cmd

import (
	"net"
	"strconv"
)

// Role names a topology must resolve.
const (
	roleServer = "server"
	roleClient = "client"
)

// topology models the YAML schema describing the deployment under test:
// the NIS domain plus the hosts playing each role. It is loaded once at
// startup and read-only afterwards.
type topology struct {
	Domain string                  `yaml:"domain"`
	Roles  map[string]topologyRole `yaml:"roles"`
}

// topologyRole resolves a role name to a reachable SSH endpoint. Port is
// optional and defaults to 22.
type topologyRole struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port,omitempty"`
}

// target renders the role's SSH dial target.
func (r topologyRole) target() string {
	port := r.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(r.Address, strconv.Itoa(port))
}
