package cmd

// runContext bundles everything a scenario step needs: the loaded topology,
// the journal, and the two hosts. It is passed explicitly to every component
// operation instead of living in package globals, so tests can build one
// around fakes.
type runContext struct {
	topo   *topology
	jr     *journal
	server *host
	client *host
}
