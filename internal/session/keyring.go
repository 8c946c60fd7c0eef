package session

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/zalando/go-keyring"
)

// probeService is the keychain service used for availability probes, kept
// separate from ServiceName so probe leftovers never shadow real sessions.
const probeService = "lumen-probe"

// OSKeyring stores secrets in the platform keychain: Keychain on macOS,
// Secret Service on Linux, Credential Manager on Windows.
type OSKeyring struct{}

// NewOSKeyring returns the platform keychain wrapper.
func NewOSKeyring() *OSKeyring {
	return &OSKeyring{}
}

// Set stores a secret in the platform keychain.
func (k *OSKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

// Get retrieves a secret from the platform keychain.
func (k *OSKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

// Delete removes a secret from the platform keychain.
func (k *OSKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

// ProbeKeyring reports whether the platform keychain accepts round trips.
func ProbeKeyring() bool {
	return probe(NewOSKeyring())
}

// probe round-trips a throwaway secret through kr. The value is unique per
// probe so a stale entry left by a crashed run cannot fake a pass.
func probe(kr Keyring) bool {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return false
	}
	want := hex.EncodeToString(nonce)

	if err := kr.Set(probeService, "probe", want); err != nil {
		return false
	}
	got, err := kr.Get(probeService, "probe")
	if err != nil || got != want {
		_ = kr.Delete(probeService, "probe")
		return false
	}
	return kr.Delete(probeService, "probe") == nil
}
