// Package secret holds connection credentials outside of persisted
// configuration. Keys are namespaced per secret kind and connection id so
// passwords and key passphrases never collide.
package secret

import (
	"errors"
	"sync"

	"github.com/zalando/go-keyring"
)

const service = "muxify"

// Store is the credential store contract. Get reports absence via the bool,
// not an error.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
	Delete(key string) error
}

func PasswordKey(connectionID string) string   { return "password:" + connectionID }
func PassphraseKey(connectionID string) string { return "passphrase:" + connectionID }

// Keyring stores secrets in the OS keychain.
type Keyring struct{}

func NewKeyring() *Keyring { return &Keyring{} }

func (k *Keyring) Set(key, value string) error {
	return keyring.Set(service, key, value)
}

func (k *Keyring) Get(key string) (string, bool, error) {
	v, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (k *Keyring) Delete(key string) error {
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Memory is an in-process store, used in tests and as a fallback when no
// keychain is available.
type Memory struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Len reports the number of stored secrets. Test helper.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
