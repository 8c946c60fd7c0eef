package backup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

func TestTokenCache_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gdrive-token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	require.NoError(t, saveToken(path, token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))
}

func TestLoadToken_Missing(t *testing.T) {
	t.Parallel()

	_, err := loadToken(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, lumenerr.ErrTokenNotFound)
}

func TestLoadToken_BadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := loadToken(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, lumenerr.ErrTokenNotFound)
}

func TestRefreshToken_ValidPassthrough(t *testing.T) {
	t.Parallel()

	// A token that is still valid comes back untouched, with no network.
	token := &oauth2.Token{
		AccessToken: "access",
		Expiry:      time.Now().Add(time.Hour),
	}

	got, err := refreshToken(context.Background(), GDriveConfig{}, token)
	require.NoError(t, err)
	assert.Same(t, token, got)
}

func TestFetchToken_UsesCachedToken(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	cached := &oauth2.Token{
		AccessToken: "cached-access",
		Expiry:      time.Now().Add(time.Hour),
	}
	require.NoError(t, saveToken(path, cached))

	got, err := fetchToken(context.Background(), GDriveConfig{TokenFile: path})
	require.NoError(t, err)
	assert.Equal(t, "cached-access", got.AccessToken)
}

func TestGDriveConfig_AuthOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Same(t, &buf, GDriveConfig{AuthOutput: &buf}.authOutput())
	assert.Equal(t, os.Stderr, GDriveConfig{}.authOutput())
}
