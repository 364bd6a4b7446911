package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// connectHost dials the topology role over SSH and wraps the connection in a
// host. The caller owns the returned host and must close its connection.
func connectHost(topo *topology, role string) (*host, error) {
	r := topo.Roles[role]
	target := r.target()
	log.WithFields(log.Fields{"role": role, "target": target}).Info("connecting")
	client, err := dialSSHFunc(target, cfgUser, cfgPassword, cfgKeyPath,
		cfgPassphrase, cfgKnownHosts, cfgStrictHost, cfgConnTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect %s (%s): %w", role, target, err)
	}
	conn, err := newSSHConnFunc(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open shell on %s (%s): %w", role, target, err)
	}
	return &host{role: role, addr: target, conn: conn}, nil
}
