package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// ErrInsecureNodeURL indicates a plaintext URL pointing at a remote host.
var ErrInsecureNodeURL = errors.New("insecure node URL: use https or a loopback address")

// Environment variable names.
const (
	EnvHome           = "LUMEN_HOME"
	EnvNodeRESTURL    = "LUMEN_NODE_REST_URL"
	EnvMacaroonPath   = "LUMEN_MACAROON_PATH"
	EnvMacaroonHex    = "LUMEN_MACAROON_HEX"  // #nosec G101 -- false positive, this is a const name not a credential
	EnvDropboxToken   = "LUMEN_DROPBOX_TOKEN" // #nosec G101 -- false positive, this is a const name not a credential
	EnvBackupProvider = "LUMEN_BACKUP_PROVIDER"
	EnvOutputFormat   = "LUMEN_OUTPUT_FORMAT"
	EnvVerbose        = "LUMEN_VERBOSE"
	EnvLogLevel       = "LUMEN_LOG_LEVEL"
	EnvNoColor        = "NO_COLOR"
	EnvSessionTTL     = "LUMEN_SESSION_TTL"
	EnvPageSize       = "LUMEN_PAGE_SIZE"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvNodeRESTURL); v != "" {
		cfg.Node.RESTURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvMacaroonPath); v != "" {
		cfg.Node.MacaroonPath = v
	}

	if v := os.Getenv(EnvMacaroonHex); v != "" {
		cfg.Node.MacaroonHex = v
	}

	if v := os.Getenv(EnvDropboxToken); v != "" {
		cfg.Backup.Dropbox.AccessToken = v
	}

	if v := os.Getenv(EnvBackupProvider); v != "" {
		cfg.Backup.DefaultProvider = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}

	// LUMEN_SESSION_TTL sets session timeout in minutes
	if v := os.Getenv(EnvSessionTTL); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			cfg.Security.SessionTTLMinutes = ttl
		}
	}

	// LUMEN_PAGE_SIZE sets the activity page size
	if v := os.Getenv(EnvPageSize); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			cfg.Activity.PageSize = size
		}
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string by removing invalid characters and trimming whitespace.
// This is useful for cleaning user-provided endpoint URLs that may contain copy-paste artifacts.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}

// ValidateNodeURL checks that a node endpoint is safe to dial.
// Plaintext schemes are only accepted for loopback addresses.
func ValidateNodeURL(raw string) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing node URL: %w", err)
	}

	switch u.Scheme {
	case "https", "wss":
		return nil
	case "http", "ws":
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" || host == "::1" {
			return nil
		}
		return ErrInsecureNodeURL
	default:
		return fmt.Errorf("unsupported node URL scheme %q", u.Scheme)
	}
}
