package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// Transport-level failures, distinct from a command's own non-zero exit.
var (
	ErrAuthFailed    = errors.New("ssh authentication failed")
	ErrKeyUnreadable = errors.New("cannot read private key")
)

// SSHOptions describes one remote target. Exactly one of Password or
// PrivateKeyPath is used, depending on which is set (key wins).
type SSHOptions struct {
	Host           string
	Port           int
	Username       string
	Password       string
	PrivateKeyPath string
	Passphrase     string
	DialTimeout    time.Duration
}

// SSHExecutor runs commands on one remote host over a single SSH transport.
// The transport is established lazily on first Execute (or explicitly via
// Connect) and re-established once per call if the server dropped it.
// Concurrent Execute calls are serialized on the transport.
type SSHExecutor struct {
	opts SSHOptions

	mu        sync.Mutex
	client    *ssh.Client
	connected bool
}

func NewSSHExecutor(opts SSHOptions) *SSHExecutor {
	if opts.Port == 0 {
		opts.Port = 22
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 10 * time.Second
	}
	return &SSHExecutor{opts: opts}
}

// Connect establishes the transport eagerly so credential problems surface
// before the first command.
func (s *SSHExecutor) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	return s.connectLocked(ctx)
}

func (s *SSHExecutor) Execute(ctx context.Context, command string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		if err := s.connectLocked(ctx); err != nil {
			return Result{}, err
		}
	}

	sess, err := s.client.NewSession()
	if err != nil {
		// Transport went away underneath us; reconnect once.
		s.teardownLocked()
		if err := s.connectLocked(ctx); err != nil {
			return Result{}, err
		}
		sess, err = s.client.NewSession()
		if err != nil {
			s.teardownLocked()
			return Result{}, fmt.Errorf("open ssh channel: %w", err)
		}
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- sess.Run(command) }()

	select {
	case <-ctx.Done():
		// Tear the transport down so the remote command does not keep
		// running against a dead channel, then wait for Run to return
		// before touching the output buffers it writes to.
		s.teardownLocked()
		<-done
		return Result{Stdout: stdout.String(), Stderr: stderr.String()}, ctx.Err()
	case err = <-done:
	}

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitStatus()
		return res, nil
	}

	// Channel closed without an exit status: the server dropped the
	// connection mid-command. Mark disconnected so the next call redials.
	s.teardownLocked()
	return res, fmt.Errorf("ssh command aborted: %w", err)
}

func (s *SSHExecutor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	return nil
}

// connectLocked dials and authenticates. Callers hold s.mu.
func (s *SSHExecutor) connectLocked(ctx context.Context) error {
	auth, err := s.authMethods()
	if err != nil {
		return err
	}

	cfg := &ssh.ClientConfig{
		User:            s.opts.Username,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         s.opts.DialTimeout,
	}

	addr := net.JoinHostPort(s.opts.Host, fmt.Sprintf("%d", s.opts.Port))
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") ||
			strings.Contains(err.Error(), "no supported methods remain") {
			return fmt.Errorf("%w: %s@%s", ErrAuthFailed, s.opts.Username, addr)
		}
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	if ctx.Err() != nil {
		client.Close()
		return ctx.Err()
	}

	s.client = client
	s.connected = true

	// Flip to disconnected when the server closes the connection so the
	// next Execute reconnects transparently.
	go func(c *ssh.Client) {
		c.Wait()
		s.mu.Lock()
		if s.client == c {
			s.client = nil
			s.connected = false
		}
		s.mu.Unlock()
	}(client)

	return nil
}

// teardownLocked drops the transport. Callers hold s.mu.
func (s *SSHExecutor) teardownLocked() {
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	s.connected = false
}

func (s *SSHExecutor) authMethods() ([]ssh.AuthMethod, error) {
	if s.opts.PrivateKeyPath != "" {
		pem, err := os.ReadFile(s.opts.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrKeyUnreadable, s.opts.PrivateKeyPath, err)
		}
		var signer ssh.Signer
		if s.opts.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(s.opts.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(pem)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrKeyUnreadable, s.opts.PrivateKeyPath, err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	return []ssh.AuthMethod{ssh.Password(s.opts.Password)}, nil
}
