package cmd

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"
)

// sessionClient is a minimal interface to obtain a command session.
type sessionClient interface {
	NewSession() (session, error)
}

// session is a minimal interface for running a command and closing.
type session interface {
	CombinedOutput(cmd string) ([]byte, error)
	Close() error
}

// sshClientWrapper adapts *ssh.Client to sessionClient for the one-shot exec
// fallback used when a host refuses PTY allocation.
type sshClientWrapper struct{ c *ssh.Client }

func (w sshClientWrapper) NewSession() (session, error) {
	if w.c == nil {
		return nil, fmt.Errorf("nil ssh client")
	}
	s, err := w.c.NewSession()
	if err != nil {
		return nil, err
	}
	return sshSessionWrapper{s}, nil
}

// sshSessionWrapper adapts *ssh.Session to session.
type sshSessionWrapper struct{ s *ssh.Session }

func (w sshSessionWrapper) CombinedOutput(cmd string) ([]byte, error) { return w.s.CombinedOutput(cmd) }
func (w sshSessionWrapper) Close() error                              { return w.s.Close() }

// runRemoteCommand executes a single command and returns output plus exit
// code. With a positive timeout the command runs in a goroutine and the
// caller is released when the deadline passes; the remote command itself is
// not killed, which callers treat as a reconnect-worthy condition.
func runRemoteCommand(client sessionClient, cmd string, timeout time.Duration) ([]byte, int, error) {
	type result struct {
		out  []byte
		code int
		err  error
	}

	run := func() result {
		sess, err := client.NewSession()
		if err != nil {
			return result{nil, -1, err}
		}
		defer func() { _ = sess.Close() }()
		b, err := sess.CombinedOutput(cmd)
		if err != nil {
			exit := -1
			if ee, ok := err.(*ssh.ExitError); ok {
				exit = ee.ExitStatus()
			}
			return result{b, exit, err}
		}
		// Persistent virtual sessions report the exit status out of band.
		if ec, ok := sess.(interface{ lastExitCode() int }); ok {
			return result{b, ec.lastExitCode(), nil}
		}
		return result{b, 0, nil}
	}

	if timeout <= 0 {
		r := run()
		return r.out, r.code, r.err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ch := make(chan result, 1)
	go func() { ch <- run() }()

	select {
	case r := <-ch:
		return r.out, r.code, r.err
	case <-ctx.Done():
		return nil, -1, context.DeadlineExceeded
	}
}
