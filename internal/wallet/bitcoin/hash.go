// Package bitcoin holds the legacy hash primitives Bitcoin key material is
// built on. They live in their own package so the deprecated imports stay in
// one place.
package bitcoin

import (
	"crypto/sha256"

	// Hash160 is RIPEMD160 over SHA256 by definition (BIP-13, BIP-16), so
	// the deprecated import is unavoidable.
	//nolint:gosec,staticcheck // G507,SA1019: fixed by the Bitcoin protocol
	"golang.org/x/crypto/ripemd160"
)

// Hash160 returns RIPEMD160(SHA256(data)), the hash Bitcoin applies to
// public keys. Lumen uses it to fingerprint backup encryption keys so an
// archive can be matched to a recovery phrase without exposing the key.
//
//nolint:gosec // G406: fixed by the Bitcoin protocol
func Hash160(data []byte) []byte {
	inner := sha256.Sum256(data)
	outer := ripemd160.New()
	_, _ = outer.Write(inner[:])
	return outer.Sum(nil)
}
