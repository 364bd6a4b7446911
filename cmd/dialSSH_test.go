package cmd

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDialSSH_StrictHostKeyMissingKnownHosts verifies strict mode refuses to
// dial without a known_hosts file.
func TestDialSSH_StrictHostKeyMissingKnownHosts(t *testing.T) {
	_, err := dialSSH("127.0.0.1:22", "u", "", "", "", filepath.Join(t.TempDir(), "nope"), true, 100*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "known_hosts")
}

// TestDialSSH_StrictHostKeyWithKnownHosts verifies an existing known_hosts
// file gets past validation; the dial itself still fails (nothing listens).
func TestDialSSH_StrictHostKeyWithKnownHosts(t *testing.T) {
	kh := writeTemp(t, t.TempDir(), "known_hosts", "\n")
	_, err := dialSSH("127.0.0.1:1", "u", "", "", "", kh, true, 50*time.Millisecond)
	require.Error(t, err)
}

// TestDialSSH_AuthMethodsAssembly verifies key and password auth assemble
// without error even when no agent socket is reachable. Assumes port 1 is
// closed.
func TestDialSSH_AuthMethodsAssembly(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", filepath.Join(t.TempDir(), "no.sock"))
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	keyPath := writeTemp(t, t.TempDir(), "id_rsa", string(pemBytes))
	_, err = dialSSH("127.0.0.1:1", "u", "p", keyPath, "", "", false, 50*time.Millisecond)
	require.Error(t, err)
}

// TestDialSSH_BadKeyPath verifies a missing key file fails before any dial.
func TestDialSSH_BadKeyPath(t *testing.T) {
	_, err := dialSSH("127.0.0.1:1", "u", "", filepath.Join(t.TempDir(), "absent"), "", "", false, 50*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "load key")
}
