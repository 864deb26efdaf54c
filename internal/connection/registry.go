package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wangtao2001/Muxify/internal/logging"
	"github.com/wangtao2001/Muxify/internal/secret"
	"github.com/wangtao2001/Muxify/internal/shell"
)

// probeCommand is the no-op used by Test.
const probeCommand = "true"

type sshDialer func(ctx context.Context, opts shell.SSHOptions) (shell.Executor, error)

// Registry owns the connection set and caches one live executor per
// connection id. Executors are created lazily and closed on connection
// removal or replacement.
type Registry struct {
	mu    sync.Mutex
	conns []Connection
	execs map[string]shell.Executor

	secrets        secret.Store
	store          *Store
	connectTimeout time.Duration
	dial           sshDialer
	log            *slog.Logger
}

// NewRegistry restores the persisted connection list and prepends the fixed
// local connection. store may be nil to disable persistence.
func NewRegistry(store *Store, secrets secret.Store, connectTimeout time.Duration) (*Registry, error) {
	r := &Registry{
		conns: []Connection{{
			ID:          LocalID,
			Kind:        KindLocal,
			DisplayName: "Local",
		}},
		execs:          make(map[string]shell.Executor),
		secrets:        secrets,
		store:          store,
		connectTimeout: connectTimeout,
		dial:           dialSSH,
		log:            logging.ForComponent(logging.CompRegistry),
	}

	if store != nil {
		saved, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("load connections: %w", err)
		}
		r.conns = append(r.conns, saved...)
	}
	return r, nil
}

func dialSSH(ctx context.Context, opts shell.SSHOptions) (shell.Executor, error) {
	ex := shell.NewSSHExecutor(opts)
	if err := ex.Connect(ctx); err != nil {
		ex.Close()
		return nil, err
	}
	return ex, nil
}

// List returns all connections, local first, in insertion order.
func (r *Registry) List() []Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Connection, len(r.conns))
	copy(out, r.conns)
	return out
}

func (r *Registry) Get(id string) (Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.ID == id {
			return c, nil
		}
	}
	return Connection{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// GetExecutor returns the cached executor for id, constructing one on first
// use. SSH executors connect eagerly and are not cached when the connect
// fails, so the next call retries cleanly.
func (r *Registry) GetExecutor(ctx context.Context, id string) (shell.Executor, error) {
	r.mu.Lock()
	if ex, ok := r.execs[id]; ok {
		r.mu.Unlock()
		return ex, nil
	}

	conn, ok := r.findLocked(id)
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if conn.Kind == KindLocal {
		ex := shell.NewLocalExecutor()
		r.execs[id] = ex
		r.mu.Unlock()
		return ex, nil
	}

	cfg := *conn.SSH
	r.mu.Unlock()

	// Merge stored secrets only when the in-memory config lacks them.
	if cfg.AuthType == AuthPassword && cfg.Password == "" {
		if v, ok, err := r.secrets.Get(secret.PasswordKey(id)); err == nil && ok {
			cfg.Password = v
		}
	}
	if cfg.AuthType == AuthPrivateKey && cfg.Passphrase == "" {
		if v, ok, err := r.secrets.Get(secret.PassphraseKey(id)); err == nil && ok {
			cfg.Passphrase = v
		}
	}

	// Connect outside the lock so a slow host doesn't stall other
	// connections.
	ex, err := r.dial(ctx, r.sshOptions(cfg))
	if err != nil {
		r.log.Warn("ssh connect failed", "connection", id, "host", cfg.Host, "error", err)
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.execs[id]; ok {
		// A concurrent caller won the race; keep theirs.
		ex.Close()
		return cached, nil
	}
	if _, ok := r.findLocked(id); !ok {
		// Connection was removed while we were connecting.
		ex.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.execs[id] = ex
	r.log.Info("ssh connected", "connection", id, "host", cfg.Host)
	return ex, nil
}

// Add registers a new SSH connection. Secrets go to the credential store;
// the registered and persisted record carries none.
func (r *Registry) Add(displayName string, cfg SSHConfig) (Connection, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Host == "" {
		return Connection{}, fmt.Errorf("connection %s: host is required", cfg.ID)
	}
	if cfg.AuthType == "" {
		cfg.AuthType = AuthPassword
	}
	if displayName == "" {
		displayName = fmt.Sprintf("%s@%s", cfg.Username, cfg.Host)
	}

	if err := r.saveSecrets(cfg); err != nil {
		return Connection{}, err
	}

	stripped := cfg.stripped()
	conn := Connection{ID: cfg.ID, Kind: KindSSH, DisplayName: displayName, SSH: &stripped}

	r.mu.Lock()
	if _, ok := r.findLocked(cfg.ID); ok {
		r.mu.Unlock()
		return Connection{}, fmt.Errorf("%w: %s", ErrDuplicateID, cfg.ID)
	}
	r.conns = append(r.conns, conn)
	r.mu.Unlock()

	if err := r.persist(); err != nil {
		return Connection{}, err
	}
	r.log.Info("connection added", "connection", cfg.ID, "host", cfg.Host)
	return conn, nil
}

// Update replaces an SSH connection's configuration. The cached executor is
// closed and evicted first so subsequent use reconnects with the new
// parameters.
func (r *Registry) Update(displayName string, cfg SSHConfig) error {
	if cfg.ID == LocalID {
		return ErrLocalProtected
	}

	r.mu.Lock()
	if _, ok := r.findLocked(cfg.ID); !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, cfg.ID)
	}
	old := r.execs[cfg.ID]
	delete(r.execs, cfg.ID)
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}

	if err := r.saveSecrets(cfg); err != nil {
		return err
	}

	if displayName == "" {
		displayName = fmt.Sprintf("%s@%s", cfg.Username, cfg.Host)
	}
	stripped := cfg.stripped()

	r.mu.Lock()
	// Re-find by id: a concurrent Remove may have shifted or dropped the
	// connection while the lock was released.
	updated := false
	for i, c := range r.conns {
		if c.ID == cfg.ID {
			r.conns[i] = Connection{ID: cfg.ID, Kind: KindSSH, DisplayName: displayName, SSH: &stripped}
			updated = true
			break
		}
	}
	r.mu.Unlock()
	if !updated {
		return fmt.Errorf("%w: %s", ErrNotFound, cfg.ID)
	}

	if err := r.persist(); err != nil {
		return err
	}
	r.log.Info("connection updated", "connection", cfg.ID, "host", cfg.Host)
	return nil
}

// Remove deletes an SSH connection, its cached executor, and its stored
// secrets. The local connection cannot be removed.
func (r *Registry) Remove(id string) error {
	if id == LocalID {
		return ErrLocalProtected
	}

	r.mu.Lock()
	idx := -1
	for i, c := range r.conns {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	old := r.execs[id]
	delete(r.execs, id)
	r.conns = append(r.conns[:idx], r.conns[idx+1:]...)
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if err := r.secrets.Delete(secret.PasswordKey(id)); err != nil {
		return err
	}
	if err := r.secrets.Delete(secret.PassphraseKey(id)); err != nil {
		return err
	}

	if err := r.persist(); err != nil {
		return err
	}
	r.log.Info("connection removed", "connection", id)
	return nil
}

// Test runs a no-op probe and reports whether it exited zero. All failure
// kinds collapse to false.
func (r *Registry) Test(ctx context.Context, id string) bool {
	ex, err := r.GetExecutor(ctx, id)
	if err != nil {
		return false
	}
	res, err := ex.Execute(ctx, probeCommand)
	return err == nil && res.ExitCode == 0
}

// Close shuts down every cached executor.
func (r *Registry) Close() error {
	r.mu.Lock()
	execs := r.execs
	r.execs = make(map[string]shell.Executor)
	r.mu.Unlock()

	for _, ex := range execs {
		ex.Close()
	}
	return nil
}

func (r *Registry) findLocked(id string) (Connection, bool) {
	for _, c := range r.conns {
		if c.ID == id {
			return c, true
		}
	}
	return Connection{}, false
}

func (r *Registry) saveSecrets(cfg SSHConfig) error {
	if cfg.Password != "" {
		if err := r.secrets.Set(secret.PasswordKey(cfg.ID), cfg.Password); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
	}
	if cfg.Passphrase != "" {
		if err := r.secrets.Set(secret.PassphraseKey(cfg.ID), cfg.Passphrase); err != nil {
			return fmt.Errorf("store passphrase: %w", err)
		}
	}
	return nil
}

func (r *Registry) persist() error {
	if r.store == nil {
		return nil
	}
	r.mu.Lock()
	var ssh []Connection
	for _, c := range r.conns {
		if c.Kind == KindSSH {
			ssh = append(ssh, c)
		}
	}
	r.mu.Unlock()
	return r.store.Save(ssh)
}

func (r *Registry) sshOptions(cfg SSHConfig) shell.SSHOptions {
	opts := shell.SSHOptions{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Username:    cfg.Username,
		DialTimeout: r.connectTimeout,
	}
	switch cfg.AuthType {
	case AuthPrivateKey:
		opts.PrivateKeyPath = cfg.PrivateKeyPath
		opts.Passphrase = cfg.Passphrase
	default:
		opts.Password = cfg.Password
	}
	return opts
}
