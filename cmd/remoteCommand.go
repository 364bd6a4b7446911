package cmd

import (
	"fmt"
	"strings"
)

// remoteRequest is a remote operation rendered to a fixed command line.
// Every command the driver issues is constructed here, so the exact
// spellings (the contract with the OS tooling on the hosts under test) live
// in one place instead of being interpolated at call sites.
type remoteRequest interface {
	render() string
}

// setDomainRequest sets the NIS domain name on a host.
type setDomainRequest struct{ domain string }

func (r setDomainRequest) render() string { return "ypdomainname " + shellQuote(r.domain) }

// setHostnameRequest sets the transient hostname.
type setHostnameRequest struct{ name string }

func (r setHostnameRequest) render() string { return "hostname " + shellQuote(r.name) }

// serviceRequest drives systemd; action is start, restart, or is-active.
type serviceRequest struct{ action, unit string }

func (r serviceRequest) render() string {
	return fmt.Sprintf("systemctl %s %s.service", r.action, r.unit)
}

// buildAllMapsRequest regenerates the full map set for the configured domain.
type buildAllMapsRequest struct{}

func (buildAllMapsRequest) render() string { return "make -C /var/yp" }

// buildMapRequest regenerates a single map inside the domain's map directory.
type buildMapRequest struct{ domain, mapName string }

func (r buildMapRequest) render() string {
	return fmt.Sprintf("make -C /var/yp/%s -f /var/yp/Makefile %s",
		shellQuote(r.domain), shellQuote(r.mapName))
}

// invalidateCacheRequest flushes one nscd table on a client.
type invalidateCacheRequest struct{ table string }

func (r invalidateCacheRequest) render() string { return "nscd -i " + shellQuote(r.table) }

// cacheTable maps an NIS map name (hosts.byname) to its nscd table (hosts).
func cacheTable(mapName string) string {
	if i := strings.IndexByte(mapName, '.'); i >= 0 {
		return mapName[:i]
	}
	return mapName
}

// bindingStatusRequest reports which server the client is currently bound to.
// Empty output (or a non-zero exit) means not bound.
type bindingStatusRequest struct{}

func (bindingStatusRequest) render() string { return "ypwhich" }

// mapDumpRequest dumps all values of a map.
type mapDumpRequest struct{ mapName string }

func (r mapDumpRequest) render() string { return "ypcat " + shellQuote(r.mapName) }

// keyLookupRequest looks up a single key in a map.
type keyLookupRequest struct{ mapName, key string }

func (r keyLookupRequest) render() string {
	return fmt.Sprintf("ypmatch %s %s", shellQuote(r.key), shellQuote(r.mapName))
}

// resolveRequest queries the system resolution path, so the nsswitch method
// order applies rather than the directory service being asked directly.
type resolveRequest struct{ database, query string }

func (r resolveRequest) render() string {
	return fmt.Sprintf("getent %s %s", shellQuote(r.database), shellQuote(r.query))
}

// hashPasswordRequest produces a sha512-crypt hash suitable for useradd -p.
type hashPasswordRequest struct{ password string }

func (r hashPasswordRequest) render() string {
	return "openssl passwd -6 " + shellQuote(r.password)
}

// createUserRequest provisions a local account that the passwd maps pick up
// on the next rebuild.
type createUserRequest struct {
	name string
	uid  int
	hash string
}

func (r createUserRequest) render() string {
	return fmt.Sprintf("useradd -m -u %d -p %s %s", r.uid, shellQuote(r.hash), shellQuote(r.name))
}

// deleteUserRequest removes the account and its home directory.
type deleteUserRequest struct{ name string }

func (r deleteUserRequest) render() string { return "userdel -r " + shellQuote(r.name) }

// backupFileRequest keeps a one-time pristine copy next to the original so
// an external rollback can restore it. Re-running it is a no-op.
type backupFileRequest struct{ path string }

func (r backupFileRequest) render() string {
	p := shellQuote(r.path)
	o := shellQuote(r.path + ".orig")
	return fmt.Sprintf("test -f %s || cp -p %s %s", o, p, o)
}

// authProbeRequest drives the PAM credential probe. operation is
// "authenticate" or "chauthtok"; newPassword is only set for the latter.
type authProbeRequest struct {
	service     string
	user        string
	password    string
	newPassword string
	operation   string
}

func (r authProbeRequest) render() string {
	parts := []string{
		"pam-probe",
		"-s", shellQuote(r.service),
		"-u", shellQuote(r.user),
		"-p", shellQuote(r.password),
	}
	if r.newPassword != "" {
		parts = append(parts, "-n", shellQuote(r.newPassword))
	}
	parts = append(parts, "-o", r.operation)
	return strings.Join(parts, " ")
}
