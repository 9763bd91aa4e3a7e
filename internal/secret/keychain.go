package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const keychainService = "invoice-builder"

// exit status of `security find-generic-password` for a missing item
const keychainNotFound = 44

// KeychainStore keeps secrets in the macOS login keychain by shelling out
// to `security`. Elsewhere it is empty and refuses writes.
type KeychainStore struct {
	service string
	enabled bool
	run     func(args ...string) ([]byte, error)
}

func NewKeychainStore() *KeychainStore {
	_, err := exec.LookPath("security")
	return &KeychainStore{
		service: keychainService,
		enabled: runtime.GOOS == "darwin" && err == nil,
		run:     runSecurity,
	}
}

func runSecurity(args ...string) ([]byte, error) {
	return exec.Command("security", args...).Output()
}

func (k *KeychainStore) Set(key string, value []byte) error {
	if !k.enabled {
		return fmt.Errorf("keychain set %s: not available on %s", key, runtime.GOOS)
	}
	// -U updates an existing item in place
	if _, err := k.run("add-generic-password", "-U", "-a", key, "-s", k.service, "-w", string(value)); err != nil {
		return fmt.Errorf("keychain set %s: %w", key, err)
	}
	return nil
}

// Get returns nil and no error when the item does not exist.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	if !k.enabled {
		return nil, nil
	}
	out, err := k.run("find-generic-password", "-a", key, "-s", k.service, "-w")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == keychainNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	return []byte(strings.TrimRight(string(out), "\r\n")), nil
}

// Delete is a no-op for missing items.
func (k *KeychainStore) Delete(key string) error {
	if !k.enabled {
		return nil
	}
	k.run("delete-generic-password", "-a", key, "-s", k.service)
	return nil
}
