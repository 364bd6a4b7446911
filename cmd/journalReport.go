package cmd

import (
	"bufio"
	"bytes"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Test statuses as written to the report.
const (
	statusPass  = "pass"
	statusFail  = "fail"
	statusError = "error"
)

// runReport is the YAML document emitted at the end of a run. Outcomes live
// only here; no component keeps its own pass/fail state.
type runReport struct {
	Name      string         `yaml:"name"`
	Domain    string         `yaml:"domain,omitempty"`
	Generated string         `yaml:"generated"`
	Groups    []*reportGroup `yaml:"groups"`
	Summary   reportSummary  `yaml:"summary"`
	Fatal     string         `yaml:"fatal,omitempty"`
}

// reportGroup collects the tests of one scenario.
type reportGroup struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Tests       []*reportTest `yaml:"tests"`
}

// reportTest records the outcome of a single named step.
type reportTest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Status      string `yaml:"status"`
	Message     string `yaml:"message,omitempty"`
}

type reportSummary struct {
	Passed int `yaml:"passed"`
	Failed int `yaml:"failed"`
	Errors int `yaml:"errors"`
}

// newRunReport constructs a report seeded with run metadata and a generated
// timestamp.
func newRunReport(name, domain string) *runReport {
	return &runReport{
		Name:      name,
		Domain:    domain,
		Generated: time.Now().Format(time.RFC3339),
	}
}

// writeYAMLReport serializes the report with two-space indentation and
// writes it to w buffered.
func writeYAMLReport(w io.Writer, r *runReport) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	_ = enc.Close()
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}
