package secret

import (
	"os"
	"strings"
	"sync"
)

// SecretStore holds sensitive values such as storage backend passwords.
// Config only ever names a secret; the value is looked up here.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// EnvStore reads secrets from INVOICE_BUILDER_SECRET_<KEY> environment
// variables. Key characters outside [A-Za-z0-9] become underscores.
type EnvStore struct{}

func envName(key string) string {
	var b strings.Builder
	b.WriteString("INVOICE_BUILDER_SECRET_")
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (EnvStore) Set(key string, value []byte) error {
	return os.Setenv(envName(key), string(value))
}

func (EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(envName(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (EnvStore) Delete(key string) error {
	return os.Unsetenv(envName(key))
}

// MapStore is an in-memory SecretStore for tests.
type MapStore struct {
	mu   sync.Mutex
	vals map[string][]byte
}

func NewMapStore() *MapStore {
	return &MapStore{vals: map[string][]byte{}}
}

func (m *MapStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = append([]byte(nil), value...)
	return nil
}

func (m *MapStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vals[key], nil
}

func (m *MapStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vals, key)
	return nil
}

// Chain looks a key up in each store in turn and returns the first hit.
// Set and Delete go to the first store only.
type Chain []SecretStore

func (c Chain) Get(key string) ([]byte, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}

func (c Chain) Set(key string, value []byte) error {
	if len(c) == 0 {
		return nil
	}
	return c[0].Set(key, value)
}

func (c Chain) Delete(key string) error {
	if len(c) == 0 {
		return nil
	}
	return c[0].Delete(key)
}

// Default returns the environment first, then the OS keychain.
func Default() SecretStore {
	return Chain{EnvStore{}, NewKeychainStore()}
}
