// Package contracts defines the interface contracts for Lumen MVP.
// These are design artifacts - not compiled code.
// Actual implementations go in internal/wallet/ and internal/session/
package contracts

import (
	"time"
)

// MnemonicService defines recovery phrase operations.
type MnemonicService interface {
	// Generate creates a new BIP39 mnemonic.
	Generate(words int) (string, error)

	// Validate checks if a mnemonic is valid.
	Validate(mnemonic string) error

	// DetectTypos finds words outside the BIP39 wordlist and suggests
	// close matches.
	DetectTypos(mnemonic string) []TypoInfo

	// ToSeed converts a mnemonic and optional passphrase to seed bytes.
	// The returned seed must be zeroed by the caller after use.
	ToSeed(mnemonic, passphrase string) ([]byte, error)
}

// TypoInfo describes a misspelled mnemonic word and its likely corrections.
type TypoInfo struct {
	// Position is the 1-based word position in the phrase.
	Position int

	// Word is the input as typed.
	Word string

	// Suggestions are wordlist entries within edit distance of the input.
	Suggestions []string
}

// BackupKey is the symmetric key that encrypts backup archives, derived
// deterministically from the wallet seed so the recovery phrase alone
// restores on any machine.
type BackupKey struct {
	// Key is the raw key material. MUST be zeroed after use.
	Key []byte

	// Fingerprint is a short public identifier of the key (8 hex chars),
	// stored in archive manifests to catch wrong-phrase restores early.
	Fingerprint string
}

// KeyDerivation derives the backup key from seed material.
type KeyDerivation interface {
	// DeriveBackupKey derives the archive encryption key from a BIP39 seed.
	// Derivation is deterministic: same seed, same key.
	DeriveBackupKey(seed []byte) (*BackupKey, error)
}

// SessionManager caches unlocked seeds in the OS keyring so repeated
// commands within the TTL skip the phrase prompt.
type SessionManager interface {
	// Available reports whether the OS keyring is usable.
	Available() bool

	// StartSession stores the seed under the wallet name with a TTL.
	StartSession(wallet string, seed []byte, ttl time.Duration) error

	// GetSession returns a copy of the cached seed and session metadata.
	// The caller must zero the seed after use.
	GetSession(wallet string) ([]byte, *SessionInfo, error)

	// HasValidSession reports whether an unexpired session exists.
	HasValidSession(wallet string) bool

	// EndSession removes the session for the wallet.
	EndSession(wallet string) error

	// EndAllSessions removes every session and returns the count.
	EndAllSessions() int
}

// SessionInfo describes an unlock session.
type SessionInfo struct {
	WalletName string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Wallet-related errors.
var (
	ErrInvalidMnemonic   = Error{Code: "INVALID_MNEMONIC", Message: "invalid mnemonic phrase"}
	ErrInvalidWalletName = Error{Code: "INVALID_WALLET_NAME", Message: "wallet name must be alphanumeric with underscores"}
	ErrSessionNotFound   = Error{Code: "SESSION_NOT_FOUND", Message: "no active session for wallet"}
	ErrKeyringLocked     = Error{Code: "KEYRING_UNAVAILABLE", Message: "OS keyring is unavailable"}
	ErrDecryptionFailed  = Error{Code: "DECRYPTION_FAILED", Message: "decryption failed - wrong key or corrupted data"}
)
