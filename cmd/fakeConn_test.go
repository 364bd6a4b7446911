package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeReply is one scripted answer for a command line.
type fakeReply struct {
	out      string
	code     int
	timedOut bool
}

// fakeConn is a scripted remoteConn. Replies are keyed by the exact rendered
// command line and consumed as a queue; lines without a script get "ok\n"
// and exit 0. Files back push/pull in memory.
type fakeConn struct {
	replies map[string][]fakeReply
	files   map[string]string
	lines   []string
	pushes  int
	pushErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		replies: make(map[string][]fakeReply),
		files:   make(map[string]string),
	}
}

// script queues replies for an exact command line, served in order. The last
// reply repeats once the queue drains only if re-queued; an exhausted queue
// falls back to the default reply.
func (f *fakeConn) script(line string, replies ...fakeReply) {
	f.replies[line] = append(f.replies[line], replies...)
}

func (f *fakeConn) run(line string, timeout time.Duration) ([]byte, int, error) {
	f.lines = append(f.lines, line)
	q := f.replies[line]
	if len(q) == 0 {
		return []byte("ok\n"), 0, nil
	}
	r := q[0]
	f.replies[line] = q[1:]
	if r.timedOut {
		return []byte(r.out), -1, fmt.Errorf("remote command timed out: %w", context.DeadlineExceeded)
	}
	return []byte(r.out), r.code, nil
}

func (f *fakeConn) push(path, content string) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes++
	f.files[path] = content
	return nil
}

func (f *fakeConn) pull(path string) ([]byte, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return []byte(content), nil
}

func (f *fakeConn) close() error { return nil }

// count returns how many times the exact line was run.
func (f *fakeConn) count(line string) int {
	n := 0
	for _, l := range f.lines {
		if l == line {
			n++
		}
	}
	return n
}

func newFakeHost(role string) (*host, *fakeConn) {
	fc := newFakeConn()
	return &host{role: role, addr: "127.0.0.1:22", conn: fc}, fc
}

// testContext builds a runContext over fake hosts for scenario-level tests.
func testContext() (*runContext, *fakeConn, *fakeConn) {
	server, sc := newFakeHost(roleServer)
	client, cc := newFakeHost(roleClient)
	topo := &topology{
		Domain: "nis.testing.suse.org",
		Roles: map[string]topologyRole{
			roleServer: {Address: "10.0.2.15"},
			roleClient: {Address: "10.0.2.16"},
		},
	}
	return &runContext{
		topo:   topo,
		jr:     newJournal("test", topo.Domain),
		server: server,
		client: client,
	}, sc, cc
}

// writeTemp writes content to dir/name and returns the full path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// stubSleep replaces the binding poll sleep for the duration of a test and
// returns a counter of calls.
func stubSleep(cleanup func(func())) *int {
	orig := sleepFunc
	n := new(int)
	sleepFunc = func(time.Duration) { *n++ }
	cleanup(func() { sleepFunc = orig })
	return n
}
