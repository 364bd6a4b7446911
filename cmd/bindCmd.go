package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// bindCmd rebinds the topology's client host in a single mode. Useful when
// poking at a deployment by hand after a failed run.
var bindCmd = &cobra.Command{
	Use:   "bind",
	Short: "Bind the client host in one mode and wait for the binding",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseBindingMode(cfgBindMode)
		if err != nil {
			return err
		}
		if cfgTopology == "" {
			return fmt.Errorf("a topology file is required (--topology)")
		}
		if cfgUser == "" {
			return fmt.Errorf("an SSH user is required (--user)")
		}
		topo, err := loadTopology(cfgTopology)
		if err != nil {
			return err
		}
		client, err := connectHost(topo, roleClient)
		if err != nil {
			return err
		}
		defer client.conn.close()

		spec := bindingSpec{
			mode:   mode,
			domain: topo.Domain,
			server: topo.Roles[roleServer].Address,
		}
		if !configureBinding(client, spec) {
			return fmt.Errorf("client did not bind in %s mode", mode)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Client bound (%s)\n", spec.render())
		return nil
	},
}
