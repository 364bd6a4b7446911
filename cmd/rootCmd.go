package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "twopence-nis",
	Short: "Validate an NIS deployment end to end",
	Long: "Connects to the NIS server and client of a test deployment over SSH, rewrites binding and " +
		"resolution configuration, and verifies lookups and authentication after each change.",
	Version: Version,
}
