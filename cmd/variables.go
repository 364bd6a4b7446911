package cmd

import "time"

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

var (
	// Global configuration populated by flags and/or environment variables.
	// These are declared here so they are visible across subcommands.
	cfgTopology    string
	cfgOutPath     string
	cfgUser        string
	cfgPassword    string
	cfgKeyPath     string
	cfgPassphrase  string
	cfgKnownHosts  string
	cfgStrictHost  bool
	cfgTimeout     time.Duration
	cfgConnTimeout time.Duration
	cfgVerbose     bool
	cfgBindMode    string
)

// Allow tests to stub dialing, transport setup, and the binding poll sleep.
var (
	dialSSHFunc    = dialSSH
	newSSHConnFunc = newRemoteConn
	sleepFunc      = time.Sleep
)
