package backup_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/activity"
	"github.com/lumenwallet/lumen/internal/backup"
	"github.com/lumenwallet/lumen/internal/lumencrypto"
	"github.com/lumenwallet/lumen/internal/wallet"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

func TestMain(m *testing.M) {
	lumencrypto.SetScryptWorkFactor(10) // Fast for tests
	os.Exit(m.Run())
}

// mockProvider is an in-memory Provider for failure injection.
type mockProvider struct {
	uploads   map[string][]byte
	uploadErr error
	listErr   error
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) Upload(_ context.Context, filename string, data []byte) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	if m.uploads == nil {
		m.uploads = make(map[string][]byte)
	}
	m.uploads[filename] = data
	return "mock://" + filename, nil
}

func (m *mockProvider) Download(_ context.Context, filename string) ([]byte, error) {
	data, ok := m.uploads[filename]
	if !ok {
		return nil, backup.ErrBackupNotFound
	}
	return data, nil
}

func (m *mockProvider) List(_ context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	names := make([]string, 0, len(m.uploads))
	for name := range m.uploads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// testKey derives a backup key from a fixed recovery phrase.
func testKey(t *testing.T, mnemonic string) *wallet.BackupKey {
	t.Helper()

	seed, err := wallet.MnemonicToSeed(mnemonic, "")
	require.NoError(t, err)
	defer wallet.ZeroBytes(seed)

	key, err := wallet.DeriveBackupKey(seed)
	require.NoError(t, err)
	return key
}

const (
	mnemonicA = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	mnemonicB = "legal winner thank year wave sausage worth useful legal winner thank yellow"
)

// testItems returns a small normalized activity snapshot.
func testItems() []activity.Item {
	return activity.NormalizeAll([]activity.Item{
		{
			Kind:      activity.KindTransaction,
			TimeStamp: 1717200000,
			TxHash:    "3e1b0f6c5dd6a4be2a5f8c5f8a9a1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c",
			Amount:    250000,
		},
		{
			Kind:         activity.KindInvoice,
			RHash:        "aa11bb22cc33dd44ee55ff66aa77bb88cc99dd00ee11ff22aa33bb44cc55dd66",
			Value:        1500,
			Settled:      true,
			SettleDate:   1717113600,
			CreationDate: 1717110000,
			Memo:         "coffee",
		},
		{
			Kind:         activity.KindPayment,
			PaymentHash:  "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20",
			Value:        4200,
			Fee:          2,
			CreationDate: 1717027200,
		},
	})
}

// localService builds a Service over a local provider in a temp directory.
func localService(t *testing.T) (*backup.Service, string) {
	t.Helper()

	dir := t.TempDir()
	provider, err := backup.NewLocalProvider(dir)
	require.NoError(t, err)
	return backup.NewService(provider), dir
}

// --- manifest.go tests ---

func TestNewManifest(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC()
	manifest := backup.NewManifest("mywallet", backup.ProviderLocal, 42, "deadbeef")
	after := time.Now().UTC()

	assert.Equal(t, "mywallet", manifest.WalletName)
	assert.Equal(t, backup.ProviderLocal, manifest.Provider)
	assert.Equal(t, 42, manifest.ItemCount)
	assert.Equal(t, "deadbeef", manifest.KeyFingerprint)
	assert.Equal(t, "age", manifest.EncryptionMethod)
	assert.True(t, manifest.CreatedAt.Equal(manifest.CreatedAt.UTC()), "CreatedAt should be UTC")
	assert.True(t, !manifest.CreatedAt.Before(before) && !manifest.CreatedAt.After(after),
		"CreatedAt should be between before and after")
}

func TestCalculateChecksum(t *testing.T) {
	t.Parallel()

	t.Run("deterministic output", func(t *testing.T) {
		t.Parallel()
		data := []byte("test data for checksum")
		checksum1 := backup.CalculateChecksum(data)
		checksum2 := backup.CalculateChecksum(data)
		assert.Equal(t, checksum1, checksum2)
		assert.Len(t, checksum1, 64) // SHA256 hex is 64 chars
	})

	t.Run("different data different checksum", func(t *testing.T) {
		t.Parallel()
		checksum1 := backup.CalculateChecksum([]byte("data one"))
		checksum2 := backup.CalculateChecksum([]byte("data two"))
		assert.NotEqual(t, checksum1, checksum2)
	})
}

func TestVerifyChecksum(t *testing.T) {
	t.Parallel()

	t.Run("matching checksum passes", func(t *testing.T) {
		t.Parallel()
		data := []byte("verify me")
		checksum := backup.CalculateChecksum(data)
		err := backup.VerifyChecksum(data, checksum)
		assert.NoError(t, err)
	})

	t.Run("mismatched checksum returns error", func(t *testing.T) {
		t.Parallel()
		data := []byte("original data")
		wrongChecksum := backup.CalculateChecksum([]byte("different data"))
		err := backup.VerifyChecksum(data, wrongChecksum)
		assert.ErrorIs(t, err, backup.ErrBackupCorrupted)
	})
}

func TestNewBackup(t *testing.T) {
	t.Parallel()

	manifest := backup.NewManifest("wallet", backup.ProviderLocal, 1, "deadbeef")
	encryptedData := []byte("encrypted-content")

	b := backup.NewBackup(manifest, encryptedData)

	assert.Equal(t, backup.BackupVersion, b.Version)
	assert.Equal(t, manifest, b.Manifest)
	assert.Equal(t, encryptedData, b.EncryptedData)
	assert.Equal(t, backup.CalculateChecksum(encryptedData), b.Checksum)
}

func TestBackup_Validate(t *testing.T) {
	t.Parallel()

	newArchive := func(walletName string, data []byte) *backup.Backup {
		manifest := backup.NewManifest(walletName, backup.ProviderLocal, 1, "deadbeef")
		return backup.NewBackup(manifest, data)
	}

	t.Run("valid archive passes", func(t *testing.T) {
		t.Parallel()
		err := newArchive("wallet", []byte("data")).Validate()
		assert.NoError(t, err)
	})

	t.Run("wrong version fails", func(t *testing.T) {
		t.Parallel()
		b := newArchive("wallet", []byte("data"))
		b.Version = 999
		err := b.Validate()
		require.ErrorIs(t, err, backup.ErrInvalidFormat)
		assert.Contains(t, err.Error(), "unsupported version")
	})

	t.Run("empty wallet name fails", func(t *testing.T) {
		t.Parallel()
		err := newArchive("", []byte("data")).Validate()
		require.ErrorIs(t, err, backup.ErrInvalidFormat)
		assert.Contains(t, err.Error(), "missing wallet name")
	})

	t.Run("empty data fails", func(t *testing.T) {
		t.Parallel()
		err := newArchive("wallet", []byte{}).Validate()
		require.ErrorIs(t, err, backup.ErrInvalidFormat)
		assert.Contains(t, err.Error(), "no encrypted data")
	})

	t.Run("bad checksum fails", func(t *testing.T) {
		t.Parallel()
		b := newArchive("wallet", []byte("data"))
		b.Checksum = "wrong-checksum"
		err := b.Validate()
		assert.ErrorIs(t, err, backup.ErrBackupCorrupted)
	})
}

func TestArchiveFilename(t *testing.T) {
	t.Parallel()

	manifest := backup.NewManifest("mywallet", backup.ProviderLocal, 1, "deadbeef")
	manifest.CreatedAt = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "mywallet-2026-01-02-150405.lumen", backup.ArchiveFilename(manifest))
}

// --- backup.go Service tests ---

func TestService_Create(t *testing.T) {
	t.Parallel()

	svc, dir := localService(t)
	key := testKey(t, mnemonicA)
	defer key.Zero()

	items := testItems()
	archive, location, err := svc.Create(context.Background(), "testwallet", items, key)

	require.NoError(t, err)
	assert.NotNil(t, archive)
	assert.NotEmpty(t, location)
	assert.Equal(t, "testwallet", archive.Manifest.WalletName)
	assert.Equal(t, backup.ProviderLocal, archive.Manifest.Provider)
	assert.Equal(t, len(items), archive.Manifest.ItemCount)
	assert.Equal(t, key.Fingerprint, archive.Manifest.KeyFingerprint)
	assert.NotEmpty(t, archive.Manifest.HostInfo)
	assert.Equal(t, backup.BackupVersion, archive.Version)
	assert.NotEmpty(t, archive.EncryptedData)
	assert.Equal(t, backup.CalculateChecksum(archive.EncryptedData), archive.Checksum)

	// The archive lands in the provider directory with owner-only perms.
	info, err := os.Stat(location)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, dir, filepath.Dir(location))
}

func TestService_Create_InvalidWalletName(t *testing.T) {
	t.Parallel()

	svc, _ := localService(t)
	key := testKey(t, mnemonicA)
	defer key.Zero()

	_, _, err := svc.Create(context.Background(), "no spaces allowed", testItems(), key)
	assert.ErrorIs(t, err, lumenerr.ErrInvalidInput)
}

func TestService_Create_UploadFailure(t *testing.T) {
	t.Parallel()

	svc := backup.NewService(&mockProvider{uploadErr: assert.AnError})
	key := testKey(t, mnemonicA)
	defer key.Zero()

	_, _, err := svc.Create(context.Background(), "testwallet", testItems(), key)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestService_Verify(t *testing.T) {
	t.Parallel()

	svc, _ := localService(t)
	key := testKey(t, mnemonicA)
	defer key.Zero()

	archive, location, err := svc.Create(context.Background(), "testwallet", testItems(), key)
	require.NoError(t, err)

	manifest, err := svc.Verify(context.Background(), filepath.Base(location))
	require.NoError(t, err)
	assert.Equal(t, "testwallet", manifest.WalletName)
	assert.Equal(t, archive.Manifest.ItemCount, manifest.ItemCount)
}

func TestService_Verify_Errors(t *testing.T) {
	t.Parallel()

	t.Run("archive not found", func(t *testing.T) {
		t.Parallel()
		svc, _ := localService(t)
		_, err := svc.Verify(context.Background(), "nonexistent.lumen")
		assert.ErrorIs(t, err, backup.ErrBackupNotFound)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		t.Parallel()
		svc, dir := localService(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lumen"), []byte("not json"), 0o600))

		_, err := svc.Verify(context.Background(), "bad.lumen")
		assert.ErrorIs(t, err, backup.ErrInvalidFormat)
	})

	t.Run("validation failure", func(t *testing.T) {
		t.Parallel()
		svc, dir := localService(t)

		invalid := backup.Backup{
			Version:       999,
			Manifest:      backup.NewManifest("test", backup.ProviderLocal, 0, ""),
			EncryptedData: []byte("data"),
			Checksum:      backup.CalculateChecksum([]byte("data")),
		}
		data, err := json.Marshal(invalid)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "invalid.lumen"), data, 0o600))

		_, err = svc.Verify(context.Background(), "invalid.lumen")
		assert.ErrorIs(t, err, backup.ErrInvalidFormat)
	})

	t.Run("corrupted data", func(t *testing.T) {
		t.Parallel()
		svc, _ := localService(t)
		key := testKey(t, mnemonicA)
		defer key.Zero()

		_, location, err := svc.Create(context.Background(), "testwallet", testItems(), key)
		require.NoError(t, err)

		// Flip the ciphertext without updating the checksum.
		raw, err := os.ReadFile(location)
		require.NoError(t, err)
		var archive backup.Backup
		require.NoError(t, json.Unmarshal(raw, &archive))
		archive.EncryptedData[0] ^= 0xff
		tampered, err := json.Marshal(archive)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(location, tampered, 0o600))

		_, err = svc.Verify(context.Background(), filepath.Base(location))
		assert.ErrorIs(t, err, backup.ErrBackupCorrupted)
	})
}

func TestService_VerifyWithKey(t *testing.T) {
	t.Parallel()

	svc, _ := localService(t)
	key := testKey(t, mnemonicA)
	defer key.Zero()

	_, location, err := svc.Create(context.Background(), "testwallet", testItems(), key)
	require.NoError(t, err)
	filename := filepath.Base(location)

	t.Run("correct key works", func(t *testing.T) {
		manifest, err := svc.VerifyWithKey(context.Background(), filename, key)
		require.NoError(t, err)
		assert.Equal(t, "testwallet", manifest.WalletName)
	})

	t.Run("key from different phrase is rejected by fingerprint", func(t *testing.T) {
		otherKey := testKey(t, mnemonicB)
		defer otherKey.Zero()

		_, err := svc.VerifyWithKey(context.Background(), filename, otherKey)
		assert.ErrorIs(t, err, backup.ErrKeyMismatch)
	})
}

func TestService_VerifyWithKey_DecryptionFailure(t *testing.T) {
	t.Parallel()

	// An archive with no fingerprint stamped and a payload encrypted under a
	// different passphrase: the fingerprint gate passes, decryption fails.
	encrypted, err := lumencrypto.Encrypt([]byte(`{"items":[]}`), "not-the-backup-key")
	require.NoError(t, err)

	manifest := backup.NewManifest("testwallet", backup.ProviderLocal, 0, "")
	archive := backup.NewBackup(manifest, encrypted)
	data, err := json.Marshal(archive)
	require.NoError(t, err)

	svc, dir := localService(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foreign.lumen"), data, 0o600))

	key := testKey(t, mnemonicA)
	defer key.Zero()

	_, err = svc.VerifyWithKey(context.Background(), "foreign.lumen", key)
	assert.ErrorIs(t, err, backup.ErrDecryptionFailed)
}

func TestService_Restore(t *testing.T) {
	t.Parallel()

	svc, _ := localService(t)
	key := testKey(t, mnemonicA)
	defer key.Zero()

	items := testItems()
	_, location, err := svc.Create(context.Background(), "testwallet", items, key)
	require.NoError(t, err)
	filename := filepath.Base(location)

	t.Run("roundtrip returns the snapshot", func(t *testing.T) {
		restored, manifest, err := svc.Restore(context.Background(), filename, key)
		require.NoError(t, err)
		assert.Equal(t, items, restored)
		assert.Equal(t, "testwallet", manifest.WalletName)
		assert.Equal(t, len(items), manifest.ItemCount)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		otherKey := testKey(t, mnemonicB)
		defer otherKey.Zero()

		_, _, err := svc.Restore(context.Background(), filename, otherKey)
		assert.ErrorIs(t, err, backup.ErrKeyMismatch)
	})
}

func TestService_List(t *testing.T) {
	t.Parallel()

	svc, dir := localService(t)
	key := testKey(t, mnemonicA)
	defer key.Zero()

	t.Run("empty directory", func(t *testing.T) {
		backups, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, backups)
	})

	t.Run("lists archives and ignores other files", func(t *testing.T) {
		_, first, err := svc.Create(context.Background(), "walletone", testItems(), key)
		require.NoError(t, err)
		_, second, err := svc.Create(context.Background(), "wallettwo", testItems(), key)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o600))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.lumen"), 0o750))

		backups, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, backups, 2)
		assert.Contains(t, backups, filepath.Base(first))
		assert.Contains(t, backups, filepath.Base(second))
	})
}

func TestService_List_ProviderError(t *testing.T) {
	t.Parallel()

	svc := backup.NewService(&mockProvider{listErr: assert.AnError})
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
