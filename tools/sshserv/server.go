// Package sshserv runs a throwaway SSH server that emulates just enough of a
// NIS host for transport tests: a line-oriented shell for the persistent
// session, cat-based file transfer, and canned replies for the common
// directory-service commands.
package sshserv

import (
	"bufio"
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

type server struct {
	mu    sync.Mutex
	files map[string]string
}

// Start launches the test server on listenAddr (use 127.0.0.1:0 for an
// ephemeral port). It accepts any user with no authentication. The returned
// addr is the bound address; stop closes the listener and waits for
// shutdown.
func Start(listenAddr string) (addr string, stop func(), err error) {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return "", nil, err
	}
	srv := &server{files: make(map[string]string)}

	stopCh := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		priv, _ := rsa.GenerateKey(rand.Reader, 2048)
		signer, _ := ssh.NewSignerFromKey(priv)
		cfg := &ssh.ServerConfig{NoClientAuth: true}
		cfg.AddHostKey(signer)

		for {
			_ = ln.(*net.TCPListener).SetDeadline(time.Now().Add(500 * time.Millisecond))
			conn, err := ln.Accept()
			select {
			case <-stopCh:
				if conn != nil {
					_ = conn.Close()
				}
				return
			default:
			}
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				continue
			}
			go srv.handleConn(conn, cfg)
		}
	}()

	stop = func() {
		close(stopCh)
		_ = ln.Close()
		<-done
	}
	return ln.Addr().String(), stop, nil
}

func (s *server) handleConn(raw net.Conn, cfg *ssh.ServerConfig) {
	sc, chans, reqs, err := ssh.NewServerConn(raw, cfg)
	if err != nil {
		_ = raw.Close()
		return
	}
	_ = sc
	go ssh.DiscardRequests(reqs)
	for ch := range chans {
		if ch.ChannelType() != "session" {
			_ = ch.Reject(ssh.UnknownChannelType, "")
			continue
		}
		c, creqs, err := ch.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(c, creqs)
	}
}

func (s *server) handleSession(ch ssh.Channel, in <-chan *ssh.Request) {
	defer ch.Close()
	for req := range in {
		switch req.Type {
		case "pty-req", "shell":
			req.Reply(true, nil)
		case "exec":
			cmd := ""
			if len(req.Payload) >= 4 {
				n := binary.BigEndian.Uint32(req.Payload)
				if int(n) <= len(req.Payload)-4 {
					cmd = string(req.Payload[4 : 4+n])
				}
			}
			req.Reply(true, nil)
			s.runExec(ch, cmd)
			return
		default:
			req.Reply(false, nil)
		}
	}
}

func (s *server) runExec(ch ssh.Channel, cmd string) {
	switch {
	case strings.Contains(cmd, "/bin/sh"):
		s.emulateShell(ch)
		sendExit(ch, 0)
	case strings.HasPrefix(cmd, "cat > "):
		path := strings.Trim(strings.TrimPrefix(cmd, "cat > "), "'")
		content, _ := io.ReadAll(ch)
		s.mu.Lock()
		s.files[path] = string(content)
		s.mu.Unlock()
		sendExit(ch, 0)
	case strings.HasPrefix(cmd, "cat "):
		path := strings.Trim(strings.TrimPrefix(cmd, "cat "), "'")
		s.mu.Lock()
		content, ok := s.files[path]
		s.mu.Unlock()
		if !ok {
			_, _ = ch.Stderr().Write([]byte("cat: " + path + ": No such file or directory\n"))
			sendExit(ch, 1)
			return
		}
		_, _ = ch.Write([]byte(content))
		sendExit(ch, 0)
	default:
		out, code := s.reply(cmd)
		if out != "" {
			_, _ = ch.Write([]byte(out))
		}
		sendExit(ch, code)
	}
}

// emulateShell reads command lines of the form "<cmd>; echo <marker> $?" and
// answers each with a canned reply followed by the marker and exit code.
func (s *server) emulateShell(ch ssh.Channel) {
	br := bufio.NewReader(ch)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return
		}
		full := strings.TrimSpace(line)
		if full == "" {
			continue
		}
		if full == "exit" {
			return
		}
		cmd, marker := full, ""
		if i := strings.LastIndex(full, "; echo "); i >= 0 {
			cmd = full[:i]
			rest := full[i+len("; echo "):]
			if j := strings.LastIndex(rest, " $?"); j >= 0 {
				marker = strings.Trim(strings.TrimSpace(rest[:j]), "'\"")
			}
		}
		out, code := s.reply(cmd)
		if out != "" {
			_, _ = ch.Write([]byte(out))
		}
		if marker != "" {
			_, _ = ch.Write([]byte(marker + " " + strconv.Itoa(code) + "\n"))
		}
	}
}

// reply maps a command line to canned output and exit code. Both the shell
// emulation and one-shot exec answer through it.
func (s *server) reply(cmd string) (string, int) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return "", 0
	}
	switch fields[0] {
	case "false":
		return "", 1
	case "ypwhich":
		return "nismaster\n", 0
	case "ypcat":
		return "teletubby.testing.suse.org 8.8.8.8 teletubby.testing.suse.org teletubby\n", 0
	case "ypmatch":
		return "8.8.8.8 teletubby.testing.suse.org teletubby\n", 0
	case "getent":
		return "8.8.8.8 teletubby.testing.suse.org teletubby\n", 0
	case "systemctl":
		if len(fields) > 1 && fields[1] == "is-active" {
			return "active\n", 0
		}
		return "", 0
	case "openssl":
		return "$6$salt$hash\n", 0
	default:
		return "ok\n", 0
	}
}

func sendExit(ch ssh.Channel, code int) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(code))
	_, _ = ch.SendRequest("exit-status", false, b[:])
}
