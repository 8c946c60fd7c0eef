// Package backup provides encrypted activity archive creation, verification,
// and restore across storage providers.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/lumenwallet/lumen/internal/activity"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

var (
	// ErrBackupNotFound indicates the backup archive was not found.
	ErrBackupNotFound = lumenerr.ErrBackupNotFound

	// ErrBackupCorrupted indicates the archive checksum failed.
	ErrBackupCorrupted = lumenerr.ErrBackupCorrupted

	// ErrDecryptionFailed indicates archive decryption failed.
	ErrDecryptionFailed = lumenerr.ErrDecryptionFailed

	// ErrInvalidFormat indicates the archive format is invalid.
	ErrInvalidFormat = &lumenerr.LumenError{
		Code:     "INVALID_BACKUP_FORMAT",
		Message:  "invalid backup format",
		ExitCode: lumenerr.ExitInput,
	}

	// ErrKeyMismatch indicates the archive was encrypted with a key derived
	// from a different recovery phrase.
	ErrKeyMismatch = &lumenerr.LumenError{
		Code:     "BACKUP_KEY_MISMATCH",
		Message:  "backup was encrypted with a different recovery phrase",
		ExitCode: lumenerr.ExitAuth,
	}
)

// BackupVersion is the current archive format version.
const BackupVersion = 1

// BackupExtension is the file extension for backup archives.
const BackupExtension = ".lumen"

// Backup represents a complete activity archive as stored by a provider.
type Backup struct {
	// Version is the archive format version.
	Version int `json:"version"`

	// Manifest contains archive metadata.
	Manifest Manifest `json:"manifest"`

	// EncryptedData is the age-encrypted activity payload.
	EncryptedData []byte `json:"encrypted_data"`

	// Checksum is the SHA256 hash of EncryptedData.
	Checksum string `json:"checksum"`
}

// Manifest describes an archive without revealing its contents.
type Manifest struct {
	// WalletName is the name of the backed up wallet.
	WalletName string `json:"wallet_name"`

	// CreatedAt is when the archive was created.
	CreatedAt time.Time `json:"created_at"`

	// Provider names the storage provider the archive was written to.
	Provider string `json:"provider"`

	// ItemCount is the number of activity items in the payload.
	ItemCount int `json:"item_count"`

	// KeyFingerprint identifies the backup key the payload was encrypted
	// with. It is derived from the key's public half and safe to store.
	KeyFingerprint string `json:"key_fingerprint"`

	// EncryptionMethod describes the encryption used.
	EncryptionMethod string `json:"encryption_method"`

	// HostInfo contains optional host information.
	HostInfo string `json:"host_info,omitempty"`
}

// Payload is the plaintext content of an archive before encryption.
type Payload struct {
	// Items is the activity snapshot being backed up.
	Items []activity.Item `json:"items"`
}

// NewManifest creates a manifest for an archive about to be written.
func NewManifest(walletName, provider string, itemCount int, keyFingerprint string) Manifest {
	return Manifest{
		WalletName:       walletName,
		CreatedAt:        time.Now().UTC(),
		Provider:         provider,
		ItemCount:        itemCount,
		KeyFingerprint:   keyFingerprint,
		EncryptionMethod: "age",
	}
}

// CalculateChecksum computes the SHA256 checksum of data.
func CalculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// VerifyChecksum verifies that data matches the expected checksum.
func VerifyChecksum(data []byte, expected string) error {
	actual := CalculateChecksum(data)
	if actual != expected {
		return lumenerr.Wrap(ErrBackupCorrupted, "expected %s, got %s", expected, actual)
	}
	return nil
}

// NewBackup creates a new archive with the given manifest and encrypted data.
func NewBackup(manifest Manifest, encryptedData []byte) *Backup {
	return &Backup{
		Version:       BackupVersion,
		Manifest:      manifest,
		EncryptedData: encryptedData,
		Checksum:      CalculateChecksum(encryptedData),
	}
}

// Validate checks the archive for consistency.
func (b *Backup) Validate() error {
	if b.Version != BackupVersion {
		return lumenerr.Wrap(ErrInvalidFormat, "unsupported version %d", b.Version)
	}

	if b.Manifest.WalletName == "" {
		return lumenerr.Wrap(ErrInvalidFormat, "missing wallet name")
	}

	if len(b.EncryptedData) == 0 {
		return lumenerr.Wrap(ErrInvalidFormat, "no encrypted data")
	}

	return VerifyChecksum(b.EncryptedData, b.Checksum)
}
