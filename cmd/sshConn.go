package cmd

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// sshConn is the SSH-backed remoteConn. Commands run sequentially on one
// persistent PTY shell, or on one-shot exec sessions when the host refuses
// PTY allocation; file transfers always use short-lived exec sessions with
// redirected stdio so arbitrary file content never passes through the shell
// line parser.
type sshConn struct {
	client *ssh.Client
	shell  *persistentShell
}

// newRemoteConn wraps a dialed SSH client into a remoteConn. A host that
// refuses the PTY or shell startup still works: every command then runs on
// its own exec session.
func newRemoteConn(client *ssh.Client) (remoteConn, error) {
	ps, err := newPersistentShell(client)
	if err != nil {
		log.Warnf("persistent shell unavailable, falling back to exec sessions: %v", err)
		return &sshConn{client: client}, nil
	}
	return &sshConn{client: client, shell: ps}, nil
}

func (c *sshConn) run(line string, timeout time.Duration) ([]byte, int, error) {
	if c.shell != nil {
		return runRemoteCommand(persistentSessionClient{c.shell}, line, timeout)
	}
	return runRemoteCommand(sshClientWrapper{c.client}, line, timeout)
}

func (c *sshConn) push(path, content string) error {
	sess, err := c.client.NewSession()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()
	sess.Stdin = strings.NewReader(content)
	return sess.Run("cat > " + shellQuote(path))
}

func (c *sshConn) pull(path string) ([]byte, error) {
	sess, err := c.client.NewSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()
	return sess.Output("cat " + shellQuote(path))
}

func (c *sshConn) close() error {
	if c.shell != nil {
		_ = c.shell.Close()
	}
	return c.client.Close()
}
