package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/tyler-smith/go-bip32"

	"github.com/lumenwallet/lumen/internal/wallet/bitcoin"
)

// BackupKeyPath documents the derivation path of the backup encryption key.
// The purpose index is hardened and unused by any address standard, so the
// backup key never collides with on-chain key material.
const BackupKeyPath = "m/1019'/0'/0'"

const backupKeyPurpose = 1019

// BackupKey is the symmetric key material that encrypts backup archives,
// together with a short fingerprint used to match archives to phrases
// without revealing the key.
type BackupKey struct {
	// Key is the 32-byte encryption key. Zero it after use.
	Key []byte

	// Fingerprint is the hex-encoded first 4 bytes of Hash160 of the
	// derived public key. It is safe to store in backup manifests.
	Fingerprint string
}

// DeriveBackupKey derives the backup encryption key from a BIP39 seed
// following BackupKeyPath. The same phrase always yields the same key, so
// archives created on one machine can be restored on another.
func DeriveBackupKey(seed []byte) (*BackupKey, error) {
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}

	// m/1019' (purpose)
	purposeKey, err := master.NewChildKey(bip32.FirstHardenedChild + backupKeyPurpose)
	if err != nil {
		return nil, fmt.Errorf("failed to derive purpose key: %w", err)
	}

	// m/1019'/0' (account)
	accountKey, err := purposeKey.NewChildKey(bip32.FirstHardenedChild)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account key: %w", err)
	}

	// m/1019'/0'/0' (key index)
	backupKey, err := accountKey.NewChildKey(bip32.FirstHardenedChild)
	if err != nil {
		return nil, fmt.Errorf("failed to derive backup key: %w", err)
	}

	pubKeyHash := bitcoin.Hash160(backupKey.PublicKey().Key)

	key := make([]byte, len(backupKey.Key))
	copy(key, backupKey.Key)

	return &BackupKey{
		Key:         key,
		Fingerprint: hex.EncodeToString(pubKeyHash[:4]),
	}, nil
}

// Zero overwrites the key material. The fingerprint is not secret and
// is left intact.
func (k *BackupKey) Zero() {
	ZeroBytes(k.Key)
}

// ZeroBytes zeros out a byte slice.
func ZeroBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
