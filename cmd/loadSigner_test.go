package cmd

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLoadSigner_Plain verifies an unencrypted PEM key loads.
func TestLoadSigner_Plain(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	path := writeTemp(t, t.TempDir(), "id_rsa", string(pemBytes))
	signer, err := loadSigner(path, "")
	require.NoError(t, err)
	require.NotNil(t, signer)
}

// TestLoadSigner_Errors verifies missing files and garbage content are
// rejected.
func TestLoadSigner_Errors(t *testing.T) {
	_, err := loadSigner(filepath.Join(t.TempDir(), "absent"), "")
	require.Error(t, err)

	path := writeTemp(t, t.TempDir(), "junk", "not a key\n")
	_, err = loadSigner(path, "")
	require.Error(t, err)
}
