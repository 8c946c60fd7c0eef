// Package session provides unlock sessions for wallet operations. After the
// recovery phrase is entered once, the derived seed is cached for a
// configurable time so backup commands do not re-prompt on every invocation.
// The session key lives in the OS keychain; the seed is encrypted with that
// key and stored in a session file. Neither location alone can recover the
// seed.
package session

import (
	"time"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// Session lifetime bounds. Requested TTLs outside this range are clamped.
const (
	// MinTTL is the shortest session a caller can request.
	MinTTL = 1 * time.Minute

	// DefaultTTL applies when the configuration does not set one.
	DefaultTTL = 15 * time.Minute

	// MaxTTL caps how long a decryptable seed may sit on disk.
	MaxTTL = 60 * time.Minute

	// ServiceName is the keychain service under which session keys are filed.
	ServiceName = "lumen-session"
)

// Session errors.
var (
	// ErrSessionNotFound indicates no session exists for the wallet.
	ErrSessionNotFound = lumenerr.ErrSessionNotFound

	// ErrSessionExpired indicates the session outlived its TTL.
	ErrSessionExpired = lumenerr.ErrSessionExpired

	// ErrKeyringUnavailable indicates the OS keychain rejected the probe.
	ErrKeyringUnavailable = lumenerr.ErrKeyringUnavailable

	// ErrSessionCorrupted indicates the session file or its key cannot be
	// used and has been discarded.
	ErrSessionCorrupted = &lumenerr.LumenError{
		Code:     "SESSION_CORRUPTED",
		Message:  "session corrupted",
		ExitCode: lumenerr.ExitGeneral,
	}
)

// Session is the plaintext metadata of an unlock session. The seed itself
// never appears here.
type Session struct {
	WalletName string    `json:"wallet_name"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsValid reports whether the session is still within its lifetime.
func (s *Session) IsValid() bool {
	return time.Now().Before(s.ExpiresAt)
}

// TTL returns the time left before expiry, or zero once expired.
func (s *Session) TTL() time.Duration {
	if remaining := time.Until(s.ExpiresAt); remaining > 0 {
		return remaining
	}
	return 0
}

// Manager is the session store the CLI talks to. The file-backed
// implementation lives in this package; tests substitute mocks.
type Manager interface {
	// Available reports whether sessions work at all on this machine,
	// which requires a usable OS keychain.
	Available() bool

	// StartSession seals seed for wallet and remembers it for ttl.
	// An existing session for the wallet is replaced.
	StartSession(wallet string, seed []byte, ttl time.Duration) error

	// GetSession returns the decrypted seed and metadata for an active
	// session. It fails with ErrSessionNotFound or ErrSessionExpired.
	GetSession(wallet string) ([]byte, *Session, error)

	// HasValidSession reports whether an unexpired session exists.
	HasValidSession(wallet string) bool

	// EndSession drops the session for wallet, if any.
	EndSession(wallet string) error

	// EndAllSessions drops every session and reports how many were ended.
	EndAllSessions() int

	// ListSessions returns the metadata of every unexpired session.
	ListSessions() ([]*Session, error)
}

// Keyring abstracts the OS keychain so tests can run without one.
type Keyring interface {
	// Set stores a secret.
	Set(service, user, password string) error

	// Get retrieves a secret.
	Get(service, user string) (string, error)

	// Delete removes a secret.
	Delete(service, user string) error
}
