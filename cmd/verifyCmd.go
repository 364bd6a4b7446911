package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// verifyCmd parses the topology file and reports whether it is usable.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate a topology file without touching any host",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgTopology == "" {
			return fmt.Errorf("a topology file is required (--topology)")
		}
		topo, err := loadTopology(cfgTopology)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"Topology OK: domain %s, server %s, client %s\n",
			topo.Domain,
			topo.Roles[roleServer].target(),
			topo.Roles[roleClient].target())
		return nil
	},
}
