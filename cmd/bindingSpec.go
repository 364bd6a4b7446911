package cmd

import "fmt"

// bindingMode selects how ypbind locates a server.
type bindingMode int

const (
	bindBroadcast bindingMode = iota
	bindDomainBroadcast
	bindServer
	bindYPServer
)

func (m bindingMode) String() string {
	switch m {
	case bindBroadcast:
		return "broadcast"
	case bindDomainBroadcast:
		return "domain-broadcast"
	case bindServer:
		return "server"
	case bindYPServer:
		return "ypserver"
	default:
		return "unknown"
	}
}

// parseBindingMode maps the CLI --mode argument to a bindingMode.
func parseBindingMode(s string) (bindingMode, error) {
	switch s {
	case "broadcast":
		return bindBroadcast, nil
	case "domain-broadcast":
		return bindDomainBroadcast, nil
	case "server":
		return bindServer, nil
	case "ypserver":
		return bindYPServer, nil
	}
	return 0, fmt.Errorf("unknown binding mode %q", s)
}

// bindingSpec is one declarative ypbind configuration. Applying a spec
// replaces yp.conf wholesale, never merges; exactly one spec is active per
// client at a time.
type bindingSpec struct {
	mode   bindingMode
	domain string
	server string
}

// render produces the single yp.conf line for this spec.
func (b bindingSpec) render() string {
	switch b.mode {
	case bindBroadcast:
		return "broadcast"
	case bindDomainBroadcast:
		return "domain " + b.domain + " broadcast"
	case bindYPServer:
		return "ypserver " + b.server
	default:
		return fmt.Sprintf("domain %s server %s", b.domain, b.server)
	}
}

// defaultBindingSpec is the explicit-server binding used whenever a lookup
// scenario needs a live binding and none is active.
func defaultBindingSpec(topo *topology) bindingSpec {
	return bindingSpec{
		mode:   bindServer,
		domain: topo.Domain,
		server: topo.Roles[roleServer].Address,
	}
}
