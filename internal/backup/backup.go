package backup

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lumenwallet/lumen/internal/activity"
	"github.com/lumenwallet/lumen/internal/lumencrypto"
	"github.com/lumenwallet/lumen/internal/wallet"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// Service creates, verifies, and restores activity archives through a
// storage provider.
type Service struct {
	provider Provider
}

// NewService creates a backup service on top of the given provider.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Create encrypts an activity snapshot with the backup key and uploads the
// archive. It returns the archive and the provider-specific location.
// The key is owned by the caller and zeroed there.
func (s *Service) Create(ctx context.Context, walletName string, items []activity.Item, key *wallet.BackupKey) (*Backup, string, error) {
	if err := wallet.ValidateWalletName(walletName); err != nil {
		return nil, "", err
	}

	payloadJSON, err := json.Marshal(Payload{Items: items})
	if err != nil {
		return nil, "", lumenerr.Wrap(err, "serializing backup payload")
	}
	defer wallet.ZeroBytes(payloadJSON)

	encryptedData, err := lumencrypto.Encrypt(payloadJSON, passphrase(key))
	if err != nil {
		return nil, "", lumenerr.Wrap(err, "encrypting backup")
	}

	manifest := NewManifest(walletName, s.provider.Name(), len(items), key.Fingerprint)
	if host, hostErr := os.Hostname(); hostErr == nil {
		manifest.HostInfo = host
	}

	archive := NewBackup(manifest, encryptedData)

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return nil, "", lumenerr.Wrap(err, "serializing backup")
	}

	location, err := s.provider.Upload(ctx, ArchiveFilename(manifest), data)
	if err != nil {
		return nil, "", err
	}

	return archive, location, nil
}

// Verify checks an archive's structure and checksum without decrypting.
func (s *Service) Verify(ctx context.Context, filename string) (*Manifest, error) {
	archive, err := s.fetchArchive(ctx, filename)
	if err != nil {
		return nil, err
	}

	if err := archive.Validate(); err != nil {
		return nil, err
	}

	return &archive.Manifest, nil
}

// VerifyWithKey verifies an archive and additionally tests decryption with
// the given backup key.
func (s *Service) VerifyWithKey(ctx context.Context, filename string, key *wallet.BackupKey) (*Manifest, error) {
	archive, err := s.fetchArchive(ctx, filename)
	if err != nil {
		return nil, err
	}

	if validationErr := archive.Validate(); validationErr != nil {
		return nil, validationErr
	}

	if err := matchKey(&archive.Manifest, key); err != nil {
		return nil, err
	}

	plaintext, err := lumencrypto.Decrypt(archive.EncryptedData, passphrase(key))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	wallet.ZeroBytes(plaintext)

	return &archive.Manifest, nil
}

// Restore decrypts an archive and returns the activity snapshot it holds.
func (s *Service) Restore(ctx context.Context, filename string, key *wallet.BackupKey) ([]activity.Item, *Manifest, error) {
	archive, err := s.fetchArchive(ctx, filename)
	if err != nil {
		return nil, nil, err
	}

	if validationErr := archive.Validate(); validationErr != nil {
		return nil, nil, validationErr
	}

	if err := matchKey(&archive.Manifest, key); err != nil {
		return nil, nil, err
	}

	decrypted, err := lumencrypto.Decrypt(archive.EncryptedData, passphrase(key))
	if err != nil {
		return nil, nil, ErrDecryptionFailed
	}
	defer wallet.ZeroBytes(decrypted)

	var payload Payload
	if err := json.Unmarshal(decrypted, &payload); err != nil {
		return nil, nil, lumenerr.Wrap(ErrInvalidFormat, "parsing backup payload: %v", err)
	}

	return payload.Items, &archive.Manifest, nil
}

// List returns the archive filenames the provider holds.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.provider.List(ctx)
}

// ArchiveFilename derives the canonical archive filename from a manifest.
func ArchiveFilename(manifest Manifest) string {
	timestamp := manifest.CreatedAt.Format("2006-01-02-150405")
	return fmt.Sprintf("%s-%s%s", manifest.WalletName, timestamp, BackupExtension)
}

// fetchArchive downloads and parses an archive.
//
//nolint:funcorder // Keeping helper methods together
func (s *Service) fetchArchive(ctx context.Context, filename string) (*Backup, error) {
	data, err := s.provider.Download(ctx, filename)
	if err != nil {
		return nil, err
	}

	var archive Backup
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, lumenerr.Wrap(ErrInvalidFormat, "parsing backup %s: %v", filename, err)
	}

	return &archive, nil
}

// matchKey rejects keys whose fingerprint does not match the one stamped
// into the manifest at creation time.
func matchKey(manifest *Manifest, key *wallet.BackupKey) error {
	if manifest.KeyFingerprint == "" || manifest.KeyFingerprint == key.Fingerprint {
		return nil
	}

	err := lumenerr.WithDetails(ErrKeyMismatch, map[string]string{
		"archive_fingerprint": manifest.KeyFingerprint,
		"key_fingerprint":     key.Fingerprint,
	})
	return lumenerr.WithSuggestion(err, "check the recovery phrase with 'lumen wallet phrase check' and try again")
}

// passphrase renders the backup key as the age passphrase.
func passphrase(key *wallet.BackupKey) string {
	return hex.EncodeToString(key.Key)
}
