package shell

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

func TestNewSSHExecutorDefaults(t *testing.T) {
	ex := NewSSHExecutor(SSHOptions{Host: "example.com", Username: "dev"})
	if ex.opts.Port != 22 {
		t.Errorf("default port = %d, want 22", ex.opts.Port)
	}
	if ex.opts.DialTimeout == 0 {
		t.Error("default dial timeout not applied")
	}
}

func TestSSHCloseNeverConnected(t *testing.T) {
	ex := NewSSHExecutor(SSHOptions{Host: "example.com", Username: "dev"})
	if err := ex.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := ex.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
}

func TestAuthMethodsMissingKeyFile(t *testing.T) {
	ex := NewSSHExecutor(SSHOptions{
		Host:           "example.com",
		Username:       "dev",
		PrivateKeyPath: filepath.Join(t.TempDir(), "no-such-key"),
	})
	_, err := ex.authMethods()
	if !errors.Is(err, ErrKeyUnreadable) {
		t.Fatalf("error = %v, want ErrKeyUnreadable", err)
	}
}

func TestAuthMethodsGarbageKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("not a pem block"), 0o600); err != nil {
		t.Fatal(err)
	}
	ex := NewSSHExecutor(SSHOptions{Host: "example.com", Username: "dev", PrivateKeyPath: path})
	_, err := ex.authMethods()
	if !errors.Is(err, ErrKeyUnreadable) {
		t.Fatalf("error = %v, want ErrKeyUnreadable", err)
	}
}

func TestAuthMethodsPasswordFallback(t *testing.T) {
	ex := NewSSHExecutor(SSHOptions{Host: "example.com", Username: "dev", Password: "hunter2"})
	methods, err := ex.authMethods()
	if err != nil {
		t.Fatalf("authMethods() error: %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("got %d auth methods, want 1", len(methods))
	}
}

// startSSHServer runs a loopback SSH server that hands each exec request to
// handle. It returns options pointing at the server.
func startSSHServer(t *testing.T, handle func(command string, ch ssh.Channel)) SSHOptions {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &ssh.ServerConfig{NoClientAuth: true}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSSHConn(conn, cfg, handle)
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}
	return SSHOptions{Host: host, Port: port, Username: "dev", DialTimeout: 5 * time.Second}
}

func serveSSHConn(conn net.Conn, cfg *ssh.ServerConfig, handle func(string, ssh.Channel)) {
	sconn, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			newCh.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go func(ch ssh.Channel, requests <-chan *ssh.Request) {
			for req := range requests {
				if req.Type != "exec" {
					req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				ssh.Unmarshal(req.Payload, &payload)
				req.Reply(true, nil)
				handle(payload.Command, ch)
			}
		}(ch, requests)
	}
}

func sendExitStatus(ch ssh.Channel, code uint32) {
	ch.SendRequest("exit-status", false, ssh.Marshal(&struct{ Status uint32 }{code}))
	ch.Close()
}

func TestSSHExecuteRoundtrip(t *testing.T) {
	opts := startSSHServer(t, func(command string, ch ssh.Channel) {
		io.WriteString(ch, "ran: "+command+"\n")
		io.WriteString(ch.Stderr(), "warn\n")
		sendExitStatus(ch, 0)
	})
	ex := NewSSHExecutor(opts)
	defer ex.Close()

	res, err := ex.Execute(context.Background(), "tmux ls")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if res.Stdout != "ran: tmux ls\n" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if res.Stderr != "warn\n" {
		t.Errorf("stderr = %q", res.Stderr)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestSSHExecuteNonZeroExit(t *testing.T) {
	opts := startSSHServer(t, func(_ string, ch ssh.Channel) {
		sendExitStatus(ch, 3)
	})
	ex := NewSSHExecutor(opts)
	defer ex.Close()

	res, err := ex.Execute(context.Background(), "false")
	if err != nil {
		t.Fatalf("non-zero exit should not be an error, got %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestSSHExecuteCancelledMidCommand(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	opts := startSSHServer(t, func(command string, ch ssh.Channel) {
		if strings.HasPrefix(command, "sleep") {
			io.WriteString(ch, "started\n")
			<-block
			return
		}
		sendExitStatus(ch, 0)
	})
	ex := NewSSHExecutor(opts)
	defer ex.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := ex.Execute(ctx, "sleep 60")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}

	// The transport was torn down on cancellation; the next call redials.
	res, err := ex.Execute(context.Background(), "true")
	if err != nil {
		t.Fatalf("Execute after cancellation: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}
