package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// runCmd executes the full scenario suite against the deployment described
// by the topology file and writes a YAML report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full validation suite against a deployment",
	Long: "Connects to the server and client hosts of the topology, bootstraps the\n" +
		"directory service on both, and runs the binding, lookup, authentication\n" +
		"and regression scenarios. Results are written as a YAML report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgTopology == "" {
			return fmt.Errorf("a topology file is required (--topology)")
		}
		if cfgOutPath == "" {
			return fmt.Errorf("a report path is required (--out)")
		}
		if cfgUser == "" {
			return fmt.Errorf("an SSH user is required (--user)")
		}
		topo, err := loadTopology(cfgTopology)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(cfgOutPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create report directory: %w", err)
			}
		}
		out, err := os.Create(cfgOutPath)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer out.Close()

		server, err := connectHost(topo, roleServer)
		if err != nil {
			return err
		}
		defer server.conn.close()
		client, err := connectHost(topo, roleClient)
		if err != nil {
			return err
		}
		defer client.conn.close()

		jr := newJournal("twopence-nis", topo.Domain)
		ctx := &runContext{topo: topo, jr: jr, server: server, client: client}
		runner := newScenarioRunner(ctx)
		runner.run()
		log.WithField("state", runner.state.String()).Info("scenario run finished")

		if err := jr.writeReport(out); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		s := jr.report.Summary
		fmt.Fprintf(os.Stderr, "Done. %d passed, %d failed, %d errors. Report written to %s\n",
			s.Passed, s.Failed, s.Errors, cfgOutPath)
		if jr.fatalled() {
			return fmt.Errorf("run aborted by a fatal error")
		}
		return nil
	},
}
