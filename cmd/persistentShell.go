package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// persistentShell manages a single interactive PTY shell on the remote host
// and runs commands on it sequentially, capturing combined output and exit
// status. Keeping one shell per host preserves state (cwd, env) across the
// many small commands a validation run issues and pays the channel setup
// cost once. A unique marker echoed after each command delimits its output
// and carries the exit code through the combined PTY stream.
type persistentShell struct {
	sess   *ssh.Session
	stdin  io.WriteCloser
	pr     *io.PipeReader
	pw     *io.PipeWriter
	reader *bufio.Reader
	mu     sync.Mutex

	nonce string
	seq   int
}

// newPersistentShell creates and initializes a remote PTY shell attached to
// a single SSH session, wiring stdout/stderr into one stream and starting
// /bin/sh in script mode. The returned shell is ready to run commands.
func newPersistentShell(client *ssh.Client) (*persistentShell, error) {
	s, err := client.NewSession()
	if err != nil {
		return nil, err
	}

	// One combined stream for stdout+stderr.
	pr, pw := io.Pipe()
	s.Stdout = pw
	s.Stderr = pw

	stdin, err := s.StdinPipe()
	if err != nil {
		_ = pw.Close()
		_ = s.Close()
		return nil, err
	}

	// Echo off: the shell must not repeat our command lines into the stream
	// we parse for markers.
	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := s.RequestPty("xterm", 80, 40, modes); err != nil {
		_ = stdin.Close()
		_ = pw.Close()
		_ = s.Close()
		return nil, err
	}

	if err := s.Start("/bin/sh -s -"); err != nil {
		_ = stdin.Close()
		_ = pw.Close()
		_ = s.Close()
		return nil, err
	}

	return &persistentShell{
		sess:   s,
		stdin:  stdin,
		pr:     pr,
		pw:     pw,
		reader: bufio.NewReader(pr),
		nonce:  makeNonce(),
	}, nil
}

// Close terminates the remote shell and releases resources. Errors from the
// stream closures are ignored; the ssh.Session close result is returned.
func (ps *persistentShell) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	_, _ = io.WriteString(ps.stdin, "exit\n")
	_ = ps.stdin.Close()
	_ = ps.pw.Close()
	return ps.sess.Close()
}

// runOne executes a single command line in the persistent shell and returns
// its combined output and exit code. The marker line carrying $? is never
// part of the returned output.
func (ps *persistentShell) runOne(line string) ([]byte, int, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	id := ps.seq
	ps.seq++
	marker := fmt.Sprintf("__TWOPENCE_NIS_END__%s__%d__", ps.nonce, id)

	// echo rather than printf: the marker must survive any remote /bin/sh.
	cmd := fmt.Sprintf("%s; echo %s $?\n", line, shellQuote(marker))
	if _, err := io.WriteString(ps.stdin, cmd); err != nil {
		return nil, -1, err
	}

	var out bytes.Buffer
	var accum strings.Builder
	for {
		chunk, err := ps.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Stream ended before the marker arrived.
				return out.Bytes(), -1, io.EOF
			}
			return out.Bytes(), -1, err
		}
		accum.WriteString(chunk)
		a := accum.String()
		idx := strings.Index(a, marker+" ")
		if idx < 0 {
			// No marker yet. Flush all but a marker-sized tail so the
			// accumulator cannot grow unbounded on chatty commands while a
			// marker split across reads is still found.
			if accum.Len() > 8192 {
				tailStart := len(a) - (len(marker) + 16)
				if tailStart < 0 {
					tailStart = 0
				}
				_, _ = out.WriteString(a[:tailStart])
				accum.Reset()
				accum.WriteString(a[tailStart:])
			}
			continue
		}
		_, _ = out.WriteString(a[:idx])
		// The exit code follows the marker and a space, up to the newline.
		rest := a[idx+len(marker)+1:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[:nl]
		}
		exit := -1
		if v, perr := strconv.Atoi(strings.TrimSpace(rest)); perr == nil {
			exit = v
		}
		return out.Bytes(), exit, nil
	}
}

// makeNonce returns a short pseudo-random identifier making end markers
// unique per shell, so output that happens to contain an old marker cannot
// be mistaken for command completion.
func makeNonce() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, 12)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

// persistentSessionClient returns virtual sessions that all run on the same
// persistent shell.
type persistentSessionClient struct{ ps *persistentShell }

func (c persistentSessionClient) NewSession() (session, error) {
	return &persistentVirtualSession{ps: c.ps}, nil
}

// persistentVirtualSession adapts a persistentShell to the session
// interface, mapping CombinedOutput to runOne and keeping the exit code for
// runRemoteCommand to pick up.
type persistentVirtualSession struct {
	ps       *persistentShell
	lastExit int
}

func (s *persistentVirtualSession) CombinedOutput(cmd string) ([]byte, error) {
	out, code, err := s.ps.runOne(cmd)
	s.lastExit = code
	return out, err
}

// Close is a no-op; the underlying persistent shell is owned by the session
// client and closed separately.
func (s *persistentVirtualSession) Close() error { return nil }

func (s *persistentVirtualSession) lastExitCode() int { return s.lastExit }
