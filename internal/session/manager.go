package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/lumenwallet/lumen/internal/fileutil"
	"github.com/lumenwallet/lumen/internal/lumencrypto"
)

const (
	sessionFileExtension   = ".session"
	sessionFilePermissions = 0o600
	sessionDirPermissions  = 0o700
	sessionKeyLength       = 32

	// probeTimeout bounds the keychain availability probe so a hung
	// Secret Service daemon cannot stall CLI startup.
	probeTimeout = 3 * time.Second
)

// walletNameRegex mirrors wallet.ValidateWalletName so the session layer
// rejects traversal attempts without importing the wallet package. Every
// exported method validates before the name reaches a file path.
var walletNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

var errInvalidWalletName = errors.New("invalid wallet name")

// sessionEnvelope is the on-disk session format: plaintext metadata next to
// the seed sealed with a keychain-held session key.
type sessionEnvelope struct {
	Meta       *Session `json:"meta"`
	SealedSeed []byte   `json:"sealed_seed"`
}

// FileManager stores sessions as files under basePath, one per wallet, with
// each session's encryption key held by the OS keychain.
type FileManager struct {
	basePath  string
	keyring   Keyring
	available bool
	mu        sync.RWMutex
}

// NewManager builds a session manager rooted at basePath. A nil keyring
// selects the OS keychain. Availability is probed once up front so later
// calls fail fast instead of waiting on a dead keychain daemon.
func NewManager(basePath string, kr Keyring) *FileManager {
	if kr == nil {
		kr = NewOSKeyring()
	}
	return &FileManager{
		basePath:  basePath,
		keyring:   kr,
		available: probeWithTimeout(kr),
	}
}

// Available reports whether sessions can be stored on this machine.
func (m *FileManager) Available() bool {
	return m.available
}

// StartSession seals seed for wallet and remembers it for ttl. The seed is
// encrypted with a fresh random key; the key goes into the keychain and the
// ciphertext onto disk.
func (m *FileManager) StartSession(wallet string, seed []byte, ttl time.Duration) error {
	if !walletNameRegex.MatchString(wallet) {
		return errInvalidWalletName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.available {
		return ErrKeyringUnavailable
	}

	ttl = clampTTL(ttl)

	sessionKey := make([]byte, sessionKeyLength)
	if _, err := rand.Read(sessionKey); err != nil {
		return fmt.Errorf("generating session key: %w", err)
	}
	defer zeroBytes(sessionKey)

	sealed, err := lumencrypto.Encrypt(seed, hex.EncodeToString(sessionKey))
	if err != nil {
		return fmt.Errorf("sealing seed: %w", err)
	}

	account := keyringAccount(wallet)
	encodedKey := base64.StdEncoding.EncodeToString(sessionKey)
	if err := m.keyring.Set(ServiceName, account, encodedKey); err != nil {
		return fmt.Errorf("storing session key in keychain: %w", err)
	}

	now := time.Now()
	env := sessionEnvelope{
		Meta: &Session{
			WalletName: wallet,
			CreatedAt:  now,
			ExpiresAt:  now.Add(ttl),
		},
		SealedSeed: sealed,
	}

	if err := m.writeEnvelope(wallet, &env); err != nil {
		// roll back the keychain entry so no orphaned key lingers
		_ = m.keyring.Delete(ServiceName, account)
		return err
	}
	return nil
}

// GetSession returns the decrypted seed and metadata for an active session.
// Expired or damaged sessions are removed as a side effect.
func (m *FileManager) GetSession(wallet string) ([]byte, *Session, error) {
	if !walletNameRegex.MatchString(wallet) {
		return nil, nil, errInvalidWalletName
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.available {
		return nil, nil, ErrKeyringUnavailable
	}

	env, err := m.readEnvelope(wallet)
	if err != nil {
		if errors.Is(err, ErrSessionCorrupted) {
			_ = m.purge(wallet)
		}
		return nil, nil, err
	}
	if !env.Meta.IsValid() {
		_ = m.purge(wallet)
		return nil, nil, ErrSessionExpired
	}

	account := keyringAccount(wallet)
	encodedKey, err := m.keyring.Get(ServiceName, account)
	if err != nil {
		// key vanished from the keychain; the file alone is useless
		_ = m.purge(wallet)
		return nil, nil, ErrSessionNotFound
	}

	sessionKey, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		_ = m.purge(wallet)
		return nil, nil, ErrSessionCorrupted
	}
	defer zeroBytes(sessionKey)

	seed, err := lumencrypto.Decrypt(env.SealedSeed, hex.EncodeToString(sessionKey))
	if err != nil {
		_ = m.purge(wallet)
		return nil, nil, ErrSessionCorrupted
	}

	return seed, env.Meta, nil
}

// HasValidSession reports whether wallet has an unexpired session on disk.
// It never touches the keychain, so it stays cheap for status checks.
func (m *FileManager) HasValidSession(wallet string) bool {
	if !walletNameRegex.MatchString(wallet) {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.available {
		return false
	}

	env, err := m.readEnvelope(wallet)
	return err == nil && env.Meta.IsValid()
}

// EndSession drops the session for wallet. Ending a wallet that has no
// session is not an error.
func (m *FileManager) EndSession(wallet string) error {
	if !walletNameRegex.MatchString(wallet) {
		return errInvalidWalletName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.purge(wallet)
}

// EndAllSessions drops every active session and reports how many were ended.
func (m *FileManager) EndAllSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions, err := m.activeSessions()
	if err != nil {
		return 0
	}

	ended := 0
	for _, s := range sessions {
		if m.purge(s.WalletName) == nil {
			ended++
		}
	}
	return ended
}

// ListSessions returns the metadata of every unexpired session.
func (m *FileManager) ListSessions() ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.activeSessions()
}

// activeSessions scans the sessions directory for unexpired envelopes.
// Callers hold m.mu.
func (m *FileManager) activeSessions() ([]*Session, error) {
	if !m.available {
		return nil, ErrKeyringUnavailable
	}

	entries, err := os.ReadDir(m.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	var active []*Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sessionFileExtension) {
			continue
		}
		wallet := strings.TrimSuffix(name, sessionFileExtension)
		if !walletNameRegex.MatchString(wallet) {
			continue
		}
		env, readErr := m.readEnvelope(wallet)
		if readErr != nil || !env.Meta.IsValid() {
			continue
		}
		active = append(active, env.Meta)
	}
	return active, nil
}

// readEnvelope loads and parses the session file for a validated wallet name.
func (m *FileManager) readEnvelope(wallet string) (*sessionEnvelope, error) {
	//nolint:gosec // G304: path is rooted in the sessions directory and the name is validated
	data, err := os.ReadFile(m.filePath(wallet))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var env sessionEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Meta == nil {
		return nil, ErrSessionCorrupted
	}
	return &env, nil
}

// writeEnvelope persists a session file atomically with owner-only
// permissions.
func (m *FileManager) writeEnvelope(wallet string, env *sessionEnvelope) error {
	if err := os.MkdirAll(m.basePath, sessionDirPermissions); err != nil {
		return fmt.Errorf("creating sessions directory: %w", err)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := fileutil.WriteAtomic(m.filePath(wallet), data, sessionFilePermissions); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// purge removes the session file and keychain entry for wallet. Callers
// hold m.mu.
func (m *FileManager) purge(wallet string) error {
	_ = m.keyring.Delete(ServiceName, keyringAccount(wallet))

	if err := os.Remove(m.filePath(wallet)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// filePath returns the session file location for a validated wallet name.
func (m *FileManager) filePath(wallet string) string {
	return filepath.Join(m.basePath, wallet+sessionFileExtension)
}

// keyringAccount names the keychain entry holding a wallet's session key.
func keyringAccount(wallet string) string {
	return "wallet:" + wallet
}

// clampTTL bounds a requested session lifetime to [MinTTL, MaxTTL].
func clampTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl < MinTTL:
		return MinTTL
	case ttl > MaxTTL:
		return MaxTTL
	default:
		return ttl
	}
}

// probeWithTimeout runs the keychain probe off the calling goroutine; an
// unresponsive keychain counts as unavailable.
func probeWithTimeout(kr Keyring) bool {
	result := make(chan bool, 1)
	go func() { result <- probe(kr) }()

	select {
	case ok := <-result:
		return ok
	case <-time.After(probeTimeout):
		return false
	}
}

// zeroBytes overwrites b with zeros. runtime.KeepAlive stops the compiler
// from treating the wipe as a dead store.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
