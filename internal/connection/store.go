package connection

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS connections (
    id               TEXT PRIMARY KEY,
    display_name     TEXT NOT NULL DEFAULT '',
    host             TEXT NOT NULL,
    port             INTEGER NOT NULL DEFAULT 22,
    username         TEXT NOT NULL DEFAULT '',
    auth_type        TEXT NOT NULL DEFAULT 'password',
    private_key_path TEXT NOT NULL DEFAULT '',
    position         INTEGER NOT NULL DEFAULT 0,
    created_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Store persists the non-secret SSH connection records. Passwords and
// passphrases never reach this table.
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens the database at
// $XDG_STATE_HOME/muxify/connections.db.
func OpenStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateHome, "muxify")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return OpenStoreAt(filepath.Join(dir, "connections.db"))
}

// OpenStoreAt opens the database at an explicit path.
func OpenStoreAt(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL mode for safe concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save rewrites the full connection list, preserving order via position.
func (s *Store) Save(conns []Connection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM connections"); err != nil {
		return err
	}
	for i, c := range conns {
		if c.Kind != KindSSH || c.SSH == nil {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO connections (id, display_name, host, port, username, auth_type, private_key_path, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.DisplayName, c.SSH.Host, c.SSH.Port, c.SSH.Username, string(c.SSH.AuthType), c.SSH.PrivateKeyPath, i)
		if err != nil {
			return fmt.Errorf("save connection %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Load returns the saved connections in insertion order.
func (s *Store) Load() ([]Connection, error) {
	rows, err := s.db.Query(`
		SELECT id, display_name, host, port, username, auth_type, private_key_path
		FROM connections
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []Connection
	for rows.Next() {
		var cfg SSHConfig
		var display, authType string
		if err := rows.Scan(&cfg.ID, &display, &cfg.Host, &cfg.Port, &cfg.Username, &authType, &cfg.PrivateKeyPath); err != nil {
			return nil, err
		}
		cfg.AuthType = AuthType(authType)
		conns = append(conns, Connection{
			ID:          cfg.ID,
			Kind:        KindSSH,
			DisplayName: display,
			SSH:         &cfg,
		})
	}
	return conns, rows.Err()
}
