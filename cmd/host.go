package cmd

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// host is one machine of the deployment under test. The bound flag caches
// the result of the last binding attempt on a client so lookup scenarios can
// skip redundant rebinding; it is only ever touched by the single sequential
// control flow driving the run, so no locking is needed.
type host struct {
	role  string
	addr  string
	bound bool
	conn  remoteConn
}

// remoteConn is the transport a host runs on. The SSH implementation lives
// in sshConn.go; tests substitute a scripted fake.
type remoteConn interface {
	run(line string, timeout time.Duration) (out []byte, exitCode int, err error)
	push(path, content string) error
	pull(path string) ([]byte, error)
	close() error
}

// runOptions bound a single remote command. A zero timeout falls back to the
// global --cmd-timeout (itself unbounded by default); quiet suppresses debug
// logging, used by the binding poll to avoid one log line per attempt.
type runOptions struct {
	timeout time.Duration
	quiet   bool
}

// cmdResult is the outcome of one remote command. ok means the command ran
// and exited zero; timedOut distinguishes a hung command from an ordinary
// failure.
type cmdResult struct {
	ok       bool
	timedOut bool
	stdout   string
}

// run renders req and executes it on the host.
func (h *host) run(req remoteRequest, opts runOptions) cmdResult {
	line := req.render()
	timeout := opts.timeout
	if timeout == 0 {
		timeout = cfgTimeout
	}
	out, code, err := h.conn.run(line, timeout)
	res := cmdResult{
		ok:       err == nil && code == 0,
		timedOut: errors.Is(err, context.DeadlineExceeded),
		stdout:   string(out),
	}
	if !opts.quiet {
		log.WithFields(log.Fields{"host": h.role, "addr": h.addr, "exit": code, "ok": res.ok}).Debugf("ran %q", line)
	}
	return res
}

// sendFile uploads content to path, replacing the file.
func (h *host) sendFile(path, content string) bool {
	if err := h.conn.push(path, content); err != nil {
		log.WithFields(log.Fields{"host": h.role, "path": path}).Warnf("upload failed: %v", err)
		return false
	}
	return true
}

// recvFile downloads path. ok is false when the file is absent or the
// transfer fails.
func (h *host) recvFile(path string) (string, bool) {
	b, err := h.conn.pull(path)
	if err != nil {
		log.WithFields(log.Fields{"host": h.role, "path": path}).Warnf("download failed: %v", err)
		return "", false
	}
	return string(b), true
}
