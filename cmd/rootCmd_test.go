package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// resetConfig clears global configuration so tests don't leak state.
func resetConfig() {
	viper.Reset()
	viper.SetEnvPrefix("TWOPENCE_NIS")
	viper.AutomaticEnv()
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	cfgTopology = ""
	cfgOutPath = ""
	cfgUser = ""
	cfgPassword = ""
	cfgKeyPath = ""
	cfgPassphrase = ""
	cfgKnownHosts = ""
	cfgStrictHost = true
	cfgTimeout = 0
	cfgConnTimeout = 15 * time.Second
	cfgVerbose = false
	cfgBindMode = "server"
}

// TestRootCmd_Flags verifies the persistent flag surface subcommands depend
// on is registered.
func TestRootCmd_Flags(t *testing.T) {
	for _, name := range []string{
		"topology", "out", "user", "password", "key", "passphrase",
		"known-hosts", "strict-host-key", "cmd-timeout", "conn-timeout", "verbose",
	} {
		require.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
	require.NotNil(t, bindCmd.Flags().Lookup("mode"))
}

// TestRootCmd_Subcommands verifies run, verify, and bind are wired in.
func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["run"])
	require.True(t, names["verify"])
	require.True(t, names["bind"])
}

// TestEnvOverrides verifies TWOPENCE_NIS_* variables flow into the globals
// during initialization. Assumes the validation error after init is expected.
func TestEnvOverrides(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)
	t.Setenv("TWOPENCE_NIS_PASSWORD", "secret")
	t.Setenv("TWOPENCE_NIS_PASSPHRASE", "pp")

	rootCmd.SetArgs([]string{"verify", "--topology", filepath.Join(t.TempDir(), "missing.yml")})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	_ = rootCmd.Execute()

	require.Equal(t, "secret", cfgPassword)
	require.Equal(t, "pp", cfgPassphrase)
}
