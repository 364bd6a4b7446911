package cmd

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// journal is the run's only outcome channel. Scenario steps report named
// tests into the current group; the YAML report is written once at the end
// of the run. Every outcome is also echoed through logrus so a run can be
// followed live.
type journal struct {
	report   *runReport
	group    *reportGroup
	test     *reportTest
	fatality string
}

func newJournal(name, domain string) *journal {
	return &journal{report: newRunReport(name, domain)}
}

func (j *journal) beginGroup(name, description string) {
	j.finishGroup()
	j.group = &reportGroup{Name: name, Description: description}
	j.report.Groups = append(j.report.Groups, j.group)
	log.WithField("group", name).Info(description)
}

func (j *journal) finishGroup() {
	j.group = nil
	j.test = nil
}

func (j *journal) beginTest(name, description string) {
	if j.group == nil {
		j.beginGroup("default", "")
	}
	j.test = &reportTest{Name: name, Description: description}
	j.group.Tests = append(j.group.Tests, j.test)
}

// record closes the current test with a status. Outcomes reported without an
// open test land in an implicit one so they are never lost.
func (j *journal) record(status, message string) {
	if j.test == nil {
		j.beginTest("unnamed", "")
	}
	j.test.Status = status
	j.test.Message = message
	fields := log.Fields{"test": j.test.Name}
	if j.group != nil {
		fields["group"] = j.group.Name
	}
	switch status {
	case statusPass:
		j.report.Summary.Passed++
		log.WithFields(fields).Info(message)
	case statusFail:
		j.report.Summary.Failed++
		log.WithFields(fields).Warn(message)
	default:
		j.report.Summary.Errors++
		log.WithFields(fields).Error(message)
	}
	j.test = nil
}

func (j *journal) success(message string) { j.record(statusPass, message) }
func (j *journal) failure(message string) { j.record(statusFail, message) }
func (j *journal) error(message string)   { j.record(statusError, message) }

// fatal records the message and latches: the scenario runner stops advancing
// once fatalled reports true. The report is still written afterwards.
func (j *journal) fatal(message string) {
	j.record(statusError, message)
	j.fatality = message
	j.report.Fatal = message
}

func (j *journal) fatalled() bool { return j.fatality != "" }

func (j *journal) writeReport(w io.Writer) error {
	j.finishGroup()
	return writeYAMLReport(w, j.report)
}
