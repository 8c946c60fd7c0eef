package lumencrypto_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/lumencrypto"
)

func TestMain(m *testing.M) {
	lumencrypto.SetScryptWorkFactor(10) // Fast for tests
	os.Exit(m.Run())
}

func TestAge_EncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	plaintext := []byte("this is secret wallet data")
	passphrase := "strong-passphrase-123" // gitleaks:allow

	// Encrypt
	ciphertext, err := lumencrypto.Encrypt(plaintext, passphrase)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)
	assert.NotEmpty(t, ciphertext)

	// Decrypt
	decrypted, err := lumencrypto.Decrypt(ciphertext, passphrase)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAge_DecryptWrongPassphrase(t *testing.T) {
	t.Parallel()
	plaintext := []byte("secret data")
	passphrase := "correct-passphrase" // gitleaks:allow
	wrongPassphrase := "wrong-passphrase"

	ciphertext, err := lumencrypto.Encrypt(plaintext, passphrase)
	require.NoError(t, err)

	_, err = lumencrypto.Decrypt(ciphertext, wrongPassphrase)
	assert.Error(t, err)
}

func TestAge_EmptyPlaintext(t *testing.T) {
	t.Parallel()
	plaintext := []byte{}
	passphrase := "passphrase" // gitleaks:allow

	ciphertext, err := lumencrypto.Encrypt(plaintext, passphrase)
	require.NoError(t, err)

	decrypted, err := lumencrypto.Decrypt(ciphertext, passphrase)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestAge_EmptyPassphrase(t *testing.T) {
	t.Parallel()
	plaintext := []byte("data")
	passphrase := ""

	// Empty passphrase is rejected by age
	_, err := lumencrypto.Encrypt(plaintext, passphrase)
	assert.Error(t, err)
}

func TestAge_LargePlaintext(t *testing.T) {
	t.Parallel()
	// 1MB of data
	plaintext := make([]byte, 1024*1024)
	for i := range plaintext {
		plaintext[i] = byte(i % 256)
	}
	passphrase := "passphrase" // gitleaks:allow

	ciphertext, err := lumencrypto.Encrypt(plaintext, passphrase)
	require.NoError(t, err)

	decrypted, err := lumencrypto.Decrypt(ciphertext, passphrase)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAge_InvalidCiphertext(t *testing.T) {
	t.Parallel()
	_, err := lumencrypto.Decrypt([]byte("not valid ciphertext"), "passphrase") // gitleaks:allow
	assert.Error(t, err)
}

func TestAge_EncryptWithSecureBytes(t *testing.T) {
	t.Parallel()
	plaintext := []byte("secret wallet data")
	passphrase := "passphrase123" // gitleaks:allow

	sb, err := lumencrypto.SecureBytesFromSlice(plaintext)
	require.NoError(t, err)
	defer sb.Destroy()

	ciphertext, err := lumencrypto.EncryptSecure(sb, passphrase)
	require.NoError(t, err)

	decrypted, err := lumencrypto.Decrypt(ciphertext, passphrase)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAge_DecryptToSecureBytes(t *testing.T) {
	t.Parallel()
	plaintext := []byte("secret wallet data")
	passphrase := "passphrase123" // gitleaks:allow

	ciphertext, err := lumencrypto.Encrypt(plaintext, passphrase)
	require.NoError(t, err)

	sb, err := lumencrypto.DecryptSecure(ciphertext, passphrase)
	require.NoError(t, err)
	defer sb.Destroy()

	assert.Equal(t, plaintext, sb.Bytes())
}
