package config_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/config"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

func TestKeys(t *testing.T) {
	t.Parallel()
	keys := config.Keys()

	assert.NotEmpty(t, keys)
	assert.True(t, sort.StringsAreSorted(keys))
	assert.Contains(t, keys, "home")
	assert.Contains(t, keys, "node.rest_url")
	assert.Contains(t, keys, "backup.gdrive.client_id")
	assert.Contains(t, keys, "backup.dropbox.access_token")
	assert.Contains(t, keys, "logging.level")
}

func TestGet(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Backup.Dropbox.AccessToken = "tok"

	tests := []struct {
		path string
		want string
	}{
		{path: "home", want: "~/.lumen"},
		{path: "node.rest_url", want: config.DefaultRESTURL},
		{path: "node.timeout_seconds", want: "30"},
		{path: "node.tls_skip_verify", want: "false"},
		{path: "activity.page_size", want: "50"},
		{path: "backup.default_provider", want: "local"},
		{path: "backup.dropbox.access_token", want: "tok"},
		{path: "security.memory_lock", want: "true"},
		{path: "output.default_format", want: "auto"},
		{path: "logging.level", want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, err := config.Get(cfg, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGet_UnknownKey(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	_, err := config.Get(cfg, "loging.level")
	require.Error(t, err)
	assert.ErrorIs(t, err, lumenerr.ErrUnknownConfigKey)

	var lerr *lumenerr.LumenError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "loging.level", lerr.Details["key"])
	assert.Contains(t, lerr.Suggestion, `"logging.level"`)
}

func TestSet(t *testing.T) {
	t.Parallel()

	t.Run("string value", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		require.NoError(t, config.Set(cfg, "backup.directory", "/mnt/backups"))
		assert.Equal(t, "/mnt/backups", cfg.Backup.Directory)
	})

	t.Run("gdrive credentials", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		require.NoError(t, config.Set(cfg, "backup.gdrive.client_id", "id.apps.googleusercontent.com"))
		require.NoError(t, config.Set(cfg, "backup.gdrive.client_secret", "shhh"))
		assert.Equal(t, "id.apps.googleusercontent.com", cfg.Backup.GDrive.ClientID)
		assert.Equal(t, "shhh", cfg.Backup.GDrive.ClientSecret)
	})

	t.Run("integer value", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		require.NoError(t, config.Set(cfg, "activity.page_size", "25"))
		assert.Equal(t, 25, cfg.Activity.PageSize)
	})

	t.Run("integer rejects zero", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		err := config.Set(cfg, "activity.page_size", "0")
		assert.ErrorIs(t, err, lumenerr.ErrInvalidInput)
	})

	t.Run("integer rejects garbage", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		err := config.Set(cfg, "node.timeout_seconds", "soon")
		assert.ErrorIs(t, err, lumenerr.ErrInvalidInput)
	})

	t.Run("bool value", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		require.NoError(t, config.Set(cfg, "output.verbose", "yes"))
		assert.True(t, cfg.Output.Verbose)
	})

	t.Run("enum accepts valid", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		require.NoError(t, config.Set(cfg, "output.default_format", "JSON"))
		assert.Equal(t, "json", cfg.Output.DefaultFormat)
	})

	t.Run("enum rejects invalid", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		err := config.Set(cfg, "logging.level", "verbose")
		require.ErrorIs(t, err, lumenerr.ErrInvalidInput)

		var lerr *lumenerr.LumenError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, "off, error, debug", lerr.Details["valid"])
	})

	t.Run("provider name normalized", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		require.NoError(t, config.Set(cfg, "backup.default_provider", " GDrive "))
		assert.Equal(t, "gdrive", cfg.Backup.DefaultProvider)
	})

	t.Run("node URL sanitized and validated", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		require.NoError(t, config.Set(cfg, "node.rest_url", " https://node.example.com:8080 "))
		assert.Equal(t, "https://node.example.com:8080", cfg.Node.RESTURL)

		err := config.Set(cfg, "node.rest_url", "http://node.example.com:8080")
		assert.ErrorIs(t, err, lumenerr.ErrInvalidInput)
	})
}

func TestSet_UnknownKey(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	err := config.Set(cfg, "backup.gdrive.clientid", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, lumenerr.ErrUnknownConfigKey)

	var lerr *lumenerr.LumenError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Suggestion, `"backup.gdrive.client_id"`)
}

func TestSuggestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "transposed", path: "loging.level", want: "logging.level"},
		{name: "missing segment char", path: "node.resturl", want: "node.rest_url"},
		{name: "close enough", path: "output.colour", want: "output.color"},
		{name: "too far", path: "database.dsn", want: ""},
		{name: "empty", path: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, config.SuggestKey(tt.path))
		})
	}
}

func TestGetSet_RoundTripAllKeys(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	// Every registered key must be readable, and writing back the value it
	// already holds must be accepted.
	for _, key := range config.Keys() {
		value, err := config.Get(cfg, key)
		require.NoError(t, err, "get %s", key)

		// Defaults leave credentials empty; empty strings are still settable,
		// but numeric keys need a real value.
		if value == "" {
			continue
		}
		require.NoError(t, config.Set(cfg, key, value), "set %s", key)
	}
}
