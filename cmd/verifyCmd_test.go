package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVerifyCmd verifies the subcommand accepts a valid topology and prints
// the resolved dial targets without touching any transport.
func TestVerifyCmd(t *testing.T) {
	topoPath := writeTopologyFile(t, `
domain: nis.testing.suse.org
roles:
  server: {address: 10.0.2.15}
  client: {address: 10.0.2.16, port: 2222}
`)
	origTopo := cfgTopology
	t.Cleanup(func() { cfgTopology = origTopo })
	cfgTopology = topoPath

	var out bytes.Buffer
	verifyCmd.SetOut(&out)
	t.Cleanup(func() { verifyCmd.SetOut(nil) })

	require.NoError(t, verifyCmd.RunE(verifyCmd, nil))
	require.Contains(t, out.String(), "Topology OK")
	require.Contains(t, out.String(), "10.0.2.15:22")
	require.Contains(t, out.String(), "10.0.2.16:2222")
}

// TestVerifyCmd_Rejects verifies a missing flag and a broken topology both
// error out.
func TestVerifyCmd_Rejects(t *testing.T) {
	origTopo := cfgTopology
	t.Cleanup(func() { cfgTopology = origTopo })

	cfgTopology = ""
	require.Error(t, verifyCmd.RunE(verifyCmd, nil))

	cfgTopology = writeTopologyFile(t, "domain: d\nroles: {}\n")
	err := verifyCmd.RunE(verifyCmd, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "roles.server")
}
