package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// runState tracks scenario progression. Each transition is gated on the
// success of its stage, so a partial run is visible at a glance in logs and
// tests.
type runState int

const (
	stateNotStarted runState = iota
	stateServerReady
	stateClientReady
	stateBindingVerified
	stateHostScenarioDone
	stateUserScenarioDone
	stateRegressionDone
)

func (s runState) String() string {
	switch s {
	case stateNotStarted:
		return "NotStarted"
	case stateServerReady:
		return "ServerReady"
	case stateClientReady:
		return "ClientReady"
	case stateBindingVerified:
		return "BindingVerified"
	case stateHostScenarioDone:
		return "HostScenarioDone"
	case stateUserScenarioDone:
		return "UserScenarioDone"
	case stateRegressionDone:
		return "RegressionDone"
	default:
		return "unknown"
	}
}

// Test fixtures. The host record and the account are injected on the server,
// resolved from the client, and (for the account) removed again at the end.
const (
	fixtureHostAddr    = "8.8.8.8"
	fixtureHostFQDN    = "teletubby.testing.suse.org"
	fixtureHostShort   = "teletubby"
	fixtureUser        = "alice"
	fixtureUID         = 6666
	fixturePassword    = "ili4dOdyss3y"
	fixtureNewPassword = "0dysseyIli4d"

	regressionTimeout = 30 * time.Second
)

// scenarioRunner drives the ordered validation scenarios against one
// deployment. Execution is strictly sequential: every remote round trip of a
// step completes before the next step starts.
type scenarioRunner struct {
	ctx   *runContext
	state runState
}

func newScenarioRunner(ctx *runContext) *scenarioRunner {
	return &scenarioRunner{ctx: ctx}
}

// run executes all stages in order. Bootstrap failures block everything that
// depends on a working deployment; a failed binding matrix does not block
// the lookup scenarios, which re-establish binding themselves. The caller
// always completes the journal report afterwards.
func (r *scenarioRunner) run() {
	jr := r.ctx.jr
	if !r.serverBootstrap() || jr.fatalled() {
		return
	}
	r.state = stateServerReady
	if !r.clientBootstrap() || jr.fatalled() {
		return
	}
	r.state = stateClientReady
	if r.bindingMatrix() {
		r.state = stateBindingVerified
	}
	if jr.fatalled() {
		return
	}
	if r.hostLookupScenario() {
		r.state = stateHostScenarioDone
	}
	if jr.fatalled() {
		return
	}
	if r.userLookupScenario() {
		r.state = stateUserScenarioDone
	}
	if jr.fatalled() {
		return
	}
	if r.regression() {
		r.state = stateRegressionDone
	}
}

// startAndCheck starts a systemd unit on h and verifies it reports active.
func (r *scenarioRunner) startAndCheck(h *host, unit string) bool {
	jr := r.ctx.jr
	jr.beginTest("start-"+unit, "start and health-check "+unit)
	if res := h.run(serviceRequest{action: "start", unit: unit}, runOptions{}); !res.ok {
		if res.timedOut {
			// A hung unit start means the host or transport is wedged;
			// nothing after this point can be trusted.
			jr.fatal(unit + " start timed out on " + h.role)
		} else {
			jr.failure(unit + " failed to start")
		}
		return false
	}
	status := h.run(serviceRequest{action: "is-active", unit: unit}, runOptions{})
	if !status.ok || strings.TrimSpace(status.stdout) != "active" {
		jr.failure(unit + " not active after start")
		return false
	}
	jr.success(unit + " active")
	return true
}

func (r *scenarioRunner) serverBootstrap() bool {
	ctx := r.ctx
	ctx.jr.beginGroup("server-init", "bootstrap the NIS master")
	defer ctx.jr.finishGroup()
	srv := ctx.server
	ok := true

	ctx.jr.beginTest("set-domain", "set the NIS domain on the master")
	if res := srv.run(setDomainRequest{domain: ctx.topo.Domain}, runOptions{}); res.ok {
		ctx.jr.success("domain " + ctx.topo.Domain)
	} else {
		ctx.jr.failure("ypdomainname failed")
		ok = false
	}

	name := "nismaster." + ctx.topo.Domain
	ctx.jr.beginTest("set-hostname", "set the master hostname")
	if res := srv.run(setHostnameRequest{name: name}, runOptions{}); res.ok {
		ctx.jr.success("hostname " + name)
	} else {
		ctx.jr.failure("hostname failed")
		ok = false
	}

	ctx.jr.beginTest("build-maps", "build the initial map set")
	if res := srv.run(buildAllMapsRequest{}, runOptions{}); res.ok {
		ctx.jr.success("initial maps built")
	} else {
		ctx.jr.failure("map build failed")
		ok = false
	}

	for _, unit := range []string{"rpcbind", "ypserv", "yppasswdd"} {
		ok = r.startAndCheck(srv, unit) && ok
	}
	return ok
}

func (r *scenarioRunner) clientBootstrap() bool {
	ctx := r.ctx
	ctx.jr.beginGroup("client-init", "bootstrap the NIS client")
	defer ctx.jr.finishGroup()
	cl := ctx.client

	// rpcbind must be running before the domain is set: ypbind registers
	// with it, and an rpcbind started after the domain change can block on a
	// name lookup during its own startup. Hard ordering dependency.
	ok := r.startAndCheck(cl, "rpcbind")

	ctx.jr.beginTest("set-domain", "set the NIS domain on the client")
	if res := cl.run(setDomainRequest{domain: ctx.topo.Domain}, runOptions{}); res.ok {
		ctx.jr.success("domain " + ctx.topo.Domain)
	} else {
		ctx.jr.failure("ypdomainname failed")
		ok = false
	}

	name := "nisclient." + ctx.topo.Domain
	ctx.jr.beginTest("set-hostname", "set the client hostname")
	if res := cl.run(setHostnameRequest{name: name}, runOptions{}); res.ok {
		ctx.jr.success("hostname " + name)
	} else {
		ctx.jr.failure("hostname failed")
		ok = false
	}

	cl.bound = false
	return ok
}

func (r *scenarioRunner) bindingMatrix() bool {
	ctx := r.ctx
	ctx.jr.beginGroup("binding-matrix", "verify every supported binding mode")
	defer ctx.jr.finishGroup()
	serverAddr := ctx.topo.Roles[roleServer].Address
	specs := []bindingSpec{
		{mode: bindBroadcast},
		{mode: bindDomainBroadcast, domain: ctx.topo.Domain},
		{mode: bindServer, domain: ctx.topo.Domain, server: serverAddr},
		{mode: bindYPServer, server: serverAddr},
	}
	ok := true
	for _, spec := range specs {
		ctx.jr.beginTest("bind-"+spec.mode.String(),
			fmt.Sprintf("bind via %s (%s)", spec.mode, spec.render()))
		if configureBinding(ctx.client, spec) {
			ctx.jr.success("client bound")
		} else {
			ctx.jr.failure(fmt.Sprintf("client did not bind within %s",
				time.Duration(bindPollAttempts)*bindPollInterval))
			ok = false
		}
	}
	return ok
}

func (r *scenarioRunner) hostLookupScenario() bool {
	ctx := r.ctx
	ctx.jr.beginGroup("hosts-lookup", "host record distribution and resolution")
	defer ctx.jr.finishGroup()
	cl := ctx.client

	ctx.jr.beginTest("ensure-bound", "client holds a live binding")
	if !ensureBound(ctx, cl) {
		ctx.jr.failure("client not bound; skipping host lookups")
		return false
	}
	ctx.jr.success("client bound")

	record := fmt.Sprintf("%s %s %s", fixtureHostAddr, fixtureHostFQDN, fixtureHostShort)
	ctx.jr.beginTest("inject-host-record", "add the fixture record to the master hosts file")
	if !applyLineTransform(ctx.server, hostsPath,
		appendIfMissingPrefix(fixtureHostAddr+" "+fixtureHostFQDN, record)) {
		ctx.jr.failure("could not rewrite " + hostsPath)
		return false
	}
	ctx.jr.success(record)

	rebuildMap(ctx, "hosts.byname")
	rebuildMap(ctx, "hosts.byaddr")

	ok := verifyMapNotEmpty(ctx, cl, "hosts.byname")
	expAddr := fixtureHostAddr
	ok = verifyKeyLookup(ctx, cl, "hosts.byname", fixtureHostFQDN, &expAddr) && ok
	expName := fixtureHostShort
	ok = verifyKeyLookup(ctx, cl, "hosts.byaddr", fixtureHostAddr, &expName) && ok

	ctx.jr.beginTest("nsswitch-hosts", "resolve hosts through files and the directory service")
	if !replaceResolutionMethods(cl, "hosts", "files nis") {
		ctx.jr.failure("could not rewrite " + nsswitchPath)
		return false
	}
	ctx.jr.success("hosts: files nis")
	cl.run(invalidateCacheRequest{table: "hosts"}, runOptions{})

	ok = verifyByAttribute(ctx, cl, "hosts", fixtureHostFQDN, fixtureHostAddr, matchFirstField) && ok
	ok = verifyByAttribute(ctx, cl, "hosts", fixtureHostAddr, fixtureHostShort, matchRemainingFields) && ok
	return ok
}

func (r *scenarioRunner) userLookupScenario() bool {
	ctx := r.ctx
	ctx.jr.beginGroup("passwd-lookup", "account distribution, resolution, and authentication")
	defer ctx.jr.finishGroup()
	cl, srv := ctx.client, ctx.server

	ctx.jr.beginTest("ensure-bound", "client holds a live binding")
	if !ensureBound(ctx, cl) {
		ctx.jr.failure("client not bound; skipping account lookups")
		return false
	}
	ctx.jr.success("client bound")

	ctx.jr.beginTest("create-account",
		fmt.Sprintf("create %s (uid %d) on the master", fixtureUser, fixtureUID))
	hashRes := srv.run(hashPasswordRequest{password: fixturePassword}, runOptions{quiet: true})
	hash := strings.TrimSpace(hashRes.stdout)
	if !hashRes.ok || hash == "" {
		ctx.jr.error("could not hash the fixture password")
		return false
	}
	if res := srv.run(createUserRequest{name: fixtureUser, uid: fixtureUID, hash: hash}, runOptions{}); !res.ok {
		ctx.jr.failure("useradd failed")
		return false
	}
	ctx.jr.success(fixtureUser + " created")

	rebuildMap(ctx, "passwd.byname")
	rebuildMap(ctx, "passwd.byuid")
	rebuildMap(ctx, "group.byname")

	ok := verifyMapNotEmpty(ctx, cl, "passwd.byname")
	expEntry := fixtureUser + ":"
	ok = verifyKeyLookup(ctx, cl, "passwd.byname", fixtureUser, &expEntry) && ok
	ok = verifyKeyLookup(ctx, cl, "passwd.byuid", strconv.Itoa(fixtureUID), &expEntry) && ok

	ctx.jr.beginTest("nsswitch-compat", "resolve passwd and group via compat")
	if !replaceResolutionMethods(cl, "passwd", "compat") ||
		!replaceResolutionMethods(cl, "group", "compat") {
		ctx.jr.failure("could not rewrite " + nsswitchPath)
		return false
	}
	ctx.jr.success("passwd/group: compat")

	for _, e := range []struct{ name, path, directive string }{
		{"compat-passwd", passwdPath, "+::::::"},
		{"compat-group", groupPath, "+:::"},
	} {
		ctx.jr.beginTest(e.name, "enable merge directive in "+e.path)
		already, okc := enableCompatEntry(cl, e.path, e.directive)
		switch {
		case !okc:
			ctx.jr.failure("could not rewrite " + e.path)
			ok = false
		case already:
			ctx.jr.success("merge directive already present")
		default:
			ctx.jr.success("merge directive appended")
		}
	}
	cl.run(invalidateCacheRequest{table: "passwd"}, runOptions{})
	cl.run(invalidateCacheRequest{table: "group"}, runOptions{})

	ok = verifyByAttribute(ctx, cl, "passwd", fixtureUser, fixtureUser, matchFirstField) && ok
	ok = verifyByAttribute(ctx, cl, "passwd", strconv.Itoa(fixtureUID), fixtureUser, matchFirstField) && ok

	ctx.jr.beginTest("enable-passwd-change", "wire password changes through to the directory service")
	if enablePasswordChangeIntegration(cl) {
		ctx.jr.success("nis token appended to pam_unix password directive")
	} else {
		ctx.jr.failure("could not rewrite " + pamPasswordPath)
		ok = false
	}

	// Credential probes run strictly after the account resolves through both
	// the directory service and the system resolution path.
	ctx.jr.beginTest("authenticate", "authenticate with the original credential")
	if authenticate(cl, fixtureUser, fixturePassword) {
		ctx.jr.success("authentication accepted")
	} else {
		ctx.jr.failure("authentication rejected")
		ok = false
	}

	ctx.jr.beginTest("change-password", "change the credential through PAM")
	if changePassword(cl, fixtureUser, fixturePassword, fixtureNewPassword) {
		ctx.jr.success("password change accepted")
	} else {
		ctx.jr.failure("password change rejected")
		ok = false
	}

	ctx.jr.beginTest("authenticate-new", "authenticate with the new credential")
	if authenticate(cl, fixtureUser, fixtureNewPassword) {
		ctx.jr.success("authentication with new credential accepted")
	} else {
		ctx.jr.failure("authentication with new credential rejected")
		ok = false
	}

	ctx.jr.beginTest("delete-account", "remove the fixture account")
	if res := srv.run(deleteUserRequest{name: fixtureUser}, runOptions{}); res.ok {
		ctx.jr.success(fixtureUser + " removed")
	} else {
		ctx.jr.failure("userdel failed")
		ok = false
	}
	rebuildMap(ctx, "passwd.byname")
	rebuildMap(ctx, "passwd.byuid")

	ok = verifyKeyLookup(ctx, cl, "passwd.byname", fixtureUser, nil) && ok
	return ok
}

// regression re-runs a historical hang: restarting rpcbind used to block
// forever when it resolved the client's own hostname through a dead binding.
// The restart must finish inside the timeout.
func (r *scenarioRunner) regression() bool {
	ctx := r.ctx
	ctx.jr.beginGroup("regression", "known-regression checks")
	defer ctx.jr.finishGroup()
	ctx.jr.beginTest("rpcbind-restart",
		fmt.Sprintf("rpcbind restart finishes within %s", regressionTimeout))
	res := ctx.client.run(serviceRequest{action: "restart", unit: "rpcbind"},
		runOptions{timeout: regressionTimeout})
	switch {
	case res.timedOut:
		ctx.jr.failure("rpcbind restart hung past the timeout")
		return false
	case !res.ok:
		ctx.jr.failure("rpcbind restart failed")
		return false
	}
	ctx.jr.success("rpcbind restart returned promptly")
	return true
}
