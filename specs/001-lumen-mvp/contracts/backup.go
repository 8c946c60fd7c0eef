// Package contracts defines the interface contracts for Lumen MVP.
// These are design artifacts - not compiled code.
// Actual implementations go in internal/backup/

package contracts

import (
	"context"
	"time"
)

// BackupService defines the interface for backup operations.
type BackupService interface {
	// Create encrypts the activity snapshot and uploads it via the provider.
	// Returns the archive and its provider-specific location.
	Create(ctx context.Context, walletName string, items []Item, key *BackupKey) (*Backup, string, error)

	// Verify checks archive structure and checksum without decrypting.
	Verify(ctx context.Context, filename string) (*BackupManifest, error)

	// VerifyWithKey additionally tests that the key opens the archive.
	VerifyWithKey(ctx context.Context, filename string, key *BackupKey) (*BackupManifest, error)

	// Restore decrypts an archive and returns its activity snapshot.
	Restore(ctx context.Context, filename string, key *BackupKey) ([]Item, *BackupManifest, error)

	// List returns the archive filenames the provider holds.
	List(ctx context.Context) ([]string, error)
}

// BackupProvider stores and retrieves backup archives. Implementations:
// local directory, Google Drive app folder, Dropbox app folder.
type BackupProvider interface {
	// Name returns the provider's registered name ("local", "gdrive",
	// "dropbox").
	Name() string

	// Upload writes archive bytes under the given filename and returns the
	// provider-specific location (a path or a file ID).
	Upload(ctx context.Context, filename string, data []byte) (string, error)

	// Download retrieves archive bytes by filename.
	Download(ctx context.Context, filename string) ([]byte, error)

	// List returns the filenames of all archives the provider holds.
	List(ctx context.Context) ([]string, error)
}

// BackupManifest contains archive metadata (not encrypted).
type BackupManifest struct {
	// WalletName is the wallet the snapshot belongs to.
	WalletName string `json:"wallet_name"`

	// CreatedAt is the archive creation timestamp (UTC).
	CreatedAt time.Time `json:"created_at"`

	// Provider is the provider name the archive was created for.
	Provider string `json:"provider"`

	// ItemCount is the number of activity items in the snapshot.
	ItemCount int `json:"item_count"`

	// KeyFingerprint identifies the encryption key without revealing it,
	// so a wrong phrase is caught before decryption.
	KeyFingerprint string `json:"key_fingerprint"`

	// EncryptionMethod is the cipher used ("age").
	EncryptionMethod string `json:"encryption_method"`
}

// Backup represents the complete archive file structure.
type Backup struct {
	// Version is the archive format version.
	Version int `json:"version"`

	// Manifest is the unencrypted metadata.
	Manifest BackupManifest `json:"manifest"`

	// EncryptedData is the age-encrypted activity snapshot.
	EncryptedData []byte `json:"encrypted_data"`

	// Checksum is SHA256 of EncryptedData, hex-encoded.
	Checksum string `json:"checksum"`
}

// BackupPayload is the plaintext content of an archive before encryption.
type BackupPayload struct {
	Items []Item `json:"items"`
}

// Backup-related errors.
var (
	ErrBackupNotFound  = Error{Code: "BACKUP_NOT_FOUND", Message: "backup archive not found"}
	ErrBackupCorrupted = Error{Code: "BACKUP_CORRUPTED", Message: "backup archive is corrupted - checksum mismatch"}
	ErrBackupVersion   = Error{Code: "BACKUP_VERSION_UNSUPPORTED", Message: "backup archive version not supported"}
	ErrKeyMismatch     = Error{Code: "BACKUP_KEY_MISMATCH", Message: "archive was encrypted with a different recovery phrase"}
)
