package connection

import "errors"

// LocalID is the fixed identifier of the implicit local connection. It
// exists for the whole process lifetime and cannot be removed.
const LocalID = "local"

type Kind string

const (
	KindLocal Kind = "local"
	KindSSH   Kind = "ssh"
)

type AuthType string

const (
	AuthPassword   AuthType = "password"
	AuthPrivateKey AuthType = "private-key"
)

var (
	ErrNotFound       = errors.New("connection not found")
	ErrLocalProtected = errors.New("local connection is protected")
	ErrDuplicateID    = errors.New("connection id already exists")
)

// SSHConfig describes one remote target. Password and Passphrase live only
// in memory or in the credential store; they are stripped before the record
// is persisted.
type SSHConfig struct {
	ID             string
	Host           string
	Port           int
	Username       string
	AuthType       AuthType
	Password       string
	PrivateKeyPath string
	Passphrase     string
}

// stripped returns a copy safe for the registry's in-memory record and for
// durable storage.
func (c SSHConfig) stripped() SSHConfig {
	c.Password = ""
	c.Passphrase = ""
	return c
}

// Connection is one registry entry: the local machine or a named SSH host.
type Connection struct {
	ID          string
	Kind        Kind
	DisplayName string
	SSH         *SSHConfig
}
