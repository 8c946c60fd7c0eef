package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// maxKeySuggestionDistance is the highest edit distance at which a
// misspelled config key still earns a suggestion.
const maxKeySuggestionDistance = 3

// keyEntry binds a dotted config path to its accessors.
type keyEntry struct {
	get func(*Config) string
	set func(*Config, string) error
}

// keyRegistry maps every settable dotted path to its accessors. The dotted
// paths match the YAML structure of the config file.
//
//nolint:gochecknoglobals // Key registry is read-only after package init
var keyRegistry = map[string]keyEntry{
	"home": {
		get: func(c *Config) string { return c.Home },
		set: func(c *Config, v string) error { c.Home = v; return nil },
	},
	"node.rest_url": {
		get: func(c *Config) string { return c.Node.RESTURL },
		set: func(c *Config, v string) error {
			u := SanitizeURL(v)
			if err := ValidateNodeURL(u); err != nil {
				return lumenerr.WithDetails(lumenerr.ErrInvalidInput,
					map[string]string{"value": v, "reason": err.Error()})
			}
			c.Node.RESTURL = u
			return nil
		},
	},
	"node.macaroon_path": {
		get: func(c *Config) string { return c.Node.MacaroonPath },
		set: func(c *Config, v string) error { c.Node.MacaroonPath = v; return nil },
	},
	"node.macaroon_hex": {
		get: func(c *Config) string { return c.Node.MacaroonHex },
		set: func(c *Config, v string) error { c.Node.MacaroonHex = v; return nil },
	},
	"node.timeout_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Node.TimeoutSeconds) },
		set: func(c *Config, v string) error {
			return setPositiveInt(&c.Node.TimeoutSeconds, v)
		},
	},
	"node.tls_skip_verify": {
		get: func(c *Config) string { return strconv.FormatBool(c.Node.TLSSkipVerify) },
		set: func(c *Config, v string) error { c.Node.TLSSkipVerify = parseBool(v); return nil },
	},
	"activity.page_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Activity.PageSize) },
		set: func(c *Config, v string) error {
			return setPositiveInt(&c.Activity.PageSize, v)
		},
	},
	"activity.cache_staleness_minutes": {
		get: func(c *Config) string { return strconv.Itoa(c.Activity.CacheStalenessMinutes) },
		set: func(c *Config, v string) error {
			return setPositiveInt(&c.Activity.CacheStalenessMinutes, v)
		},
	},
	"backup.default_provider": {
		get: func(c *Config) string { return c.Backup.DefaultProvider },
		set: func(c *Config, v string) error {
			// Provider names are matched exactly at use; normalize here so a
			// stored value never fails on casing alone.
			c.Backup.DefaultProvider = strings.ToLower(strings.TrimSpace(v))
			return nil
		},
	},
	"backup.directory": {
		get: func(c *Config) string { return c.Backup.Directory },
		set: func(c *Config, v string) error { c.Backup.Directory = v; return nil },
	},
	"backup.gdrive.client_id": {
		get: func(c *Config) string { return c.Backup.GDrive.ClientID },
		set: func(c *Config, v string) error { c.Backup.GDrive.ClientID = v; return nil },
	},
	"backup.gdrive.client_secret": {
		get: func(c *Config) string { return c.Backup.GDrive.ClientSecret },
		set: func(c *Config, v string) error { c.Backup.GDrive.ClientSecret = v; return nil },
	},
	"backup.gdrive.token_file": {
		get: func(c *Config) string { return c.Backup.GDrive.TokenFile },
		set: func(c *Config, v string) error { c.Backup.GDrive.TokenFile = v; return nil },
	},
	"backup.dropbox.access_token": {
		get: func(c *Config) string { return c.Backup.Dropbox.AccessToken },
		set: func(c *Config, v string) error { c.Backup.Dropbox.AccessToken = v; return nil },
	},
	"backup.dropbox.folder": {
		get: func(c *Config) string { return c.Backup.Dropbox.Folder },
		set: func(c *Config, v string) error { c.Backup.Dropbox.Folder = v; return nil },
	},
	"security.memory_lock": {
		get: func(c *Config) string { return strconv.FormatBool(c.Security.MemoryLock) },
		set: func(c *Config, v string) error { c.Security.MemoryLock = parseBool(v); return nil },
	},
	"security.session_enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Security.SessionEnabled) },
		set: func(c *Config, v string) error { c.Security.SessionEnabled = parseBool(v); return nil },
	},
	"security.session_ttl_minutes": {
		get: func(c *Config) string { return strconv.Itoa(c.Security.SessionTTLMinutes) },
		set: func(c *Config, v string) error {
			return setPositiveInt(&c.Security.SessionTTLMinutes, v)
		},
	},
	"output.default_format": {
		get: func(c *Config) string { return c.Output.DefaultFormat },
		set: func(c *Config, v string) error {
			return setEnum(&c.Output.DefaultFormat, v, "text", "json", "auto")
		},
	},
	"output.color": {
		get: func(c *Config) string { return c.Output.Color },
		set: func(c *Config, v string) error {
			return setEnum(&c.Output.Color, v, "auto", "always", "never")
		},
	},
	"output.verbose": {
		get: func(c *Config) string { return strconv.FormatBool(c.Output.Verbose) },
		set: func(c *Config, v string) error { c.Output.Verbose = parseBool(v); return nil },
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error {
			return setEnum(&c.Logging.Level, v, "off", "error", "debug")
		},
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
}

// Keys returns every dotted config path accessible through Get and Set,
// sorted.
func Keys() []string {
	keys := make([]string, 0, len(keyRegistry))
	for k := range keyRegistry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get reads the value at a dotted config path. Unknown paths fail with
// ErrUnknownConfigKey, with a suggestion attached when the path is close to
// a known key.
func Get(c *Config, path string) (string, error) {
	entry, ok := keyRegistry[path]
	if !ok {
		return "", unknownKey(path)
	}
	return entry.get(c), nil
}

// Set writes the value at a dotted config path. Unknown paths fail with
// ErrUnknownConfigKey; invalid values fail with ErrInvalidInput.
func Set(c *Config, path, value string) error {
	entry, ok := keyRegistry[path]
	if !ok {
		return unknownKey(path)
	}
	return entry.set(c, value)
}

// SuggestKey returns the known config key closest to the given one, or ""
// when nothing is within edit distance 3.
func SuggestKey(path string) string {
	if path == "" {
		return ""
	}

	bestKey := ""
	bestDistance := maxKeySuggestionDistance + 1
	for _, candidate := range Keys() {
		distance := levenshtein.ComputeDistance(path, candidate)
		if distance < bestDistance {
			bestDistance = distance
			bestKey = candidate
		}
	}
	return bestKey
}

func unknownKey(path string) error {
	err := lumenerr.Wrap(lumenerr.ErrUnknownConfigKey, "config key %q", path)
	err = lumenerr.WithDetails(err, map[string]string{"key": path})
	if suggestion := SuggestKey(path); suggestion != "" {
		err = lumenerr.WithSuggestion(err, fmt.Sprintf("did you mean %q?", suggestion))
	}
	return err
}

func setPositiveInt(dst *int, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return lumenerr.WithDetails(lumenerr.ErrInvalidInput,
			map[string]string{"value": value, "valid": "a positive integer"})
	}
	*dst = n
	return nil
}

func setEnum(dst *string, value string, valid ...string) error {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range valid {
		if v == candidate {
			*dst = v
			return nil
		}
	}
	return lumenerr.WithDetails(lumenerr.ErrInvalidInput,
		map[string]string{"value": value, "valid": strings.Join(valid, ", ")})
}
