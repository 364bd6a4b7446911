package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestExecute_Success verifies the full cobra wiring from argv to a written
// report with no exit. Assumes the stubbed transport, so scenario outcomes
// are failures but never fatal.
func TestExecute_Success(t *testing.T) {
	stubSleep(t.Cleanup)
	stubTransport(t)

	origExit := exitFunc
	t.Cleanup(func() { exitFunc = origExit })
	called := 0
	exitFunc = func(code int) { called = code }

	topoPath := writeTopologyFile(t, `
domain: nis.testing.suse.org
roles:
  server: {address: 10.0.2.15}
  client: {address: 10.0.2.16}
`)
	outPath := filepath.Join(t.TempDir(), "report.yml")
	rootCmd.SetArgs([]string{
		"run",
		"--topology", topoPath,
		"--out", outPath,
		"--user", "root",
		"--strict-host-key=false",
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	Execute()
	require.Equal(t, 0, called)

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var report runReport
	require.NoError(t, yaml.Unmarshal(b, &report))
	require.Equal(t, "nis.testing.suse.org", report.Domain)
}

// TestExecute_Failure verifies a failing subcommand drives exit code 1.
func TestExecute_Failure(t *testing.T) {
	origExit := exitFunc
	t.Cleanup(func() { exitFunc = origExit })
	called := 0
	exitFunc = func(code int) { called = code }

	rootCmd.SetArgs([]string{"verify", "--topology", filepath.Join(t.TempDir(), "absent.yml")})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	Execute()
	require.Equal(t, 1, called)
}

// TestExitFunc_Override verifies the exit stub plumbing itself.
func TestExitFunc_Override(t *testing.T) {
	orig := exitFunc
	t.Cleanup(func() { exitFunc = orig })
	called := 0
	exitFunc = func(code int) { called = code }
	exitFunc(3)
	require.Equal(t, 3, called)
}
