package wallet

import (
	"regexp"

	"github.com/mrz1836/go-sanitize"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// ErrInvalidWalletName indicates the wallet name is invalid.
var ErrInvalidWalletName = lumenerr.WithSuggestion(lumenerr.ErrInvalidInput,
	"wallet name must be 1-64 alphanumeric characters, underscores, or hyphens")

// walletNameRegex validates wallet names: alphanumeric + underscore + hyphen, 1-64 chars.
var walletNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateWalletName checks if a wallet name is valid. The name is stamped
// into backup manifests and used in provider paths, so it stays restricted
// to filesystem-safe characters.
func ValidateWalletName(name string) error {
	if !walletNameRegex.MatchString(name) {
		return ErrInvalidWalletName
	}
	return nil
}

// SuggestWalletName provides a sanitized version of an invalid wallet name.
// It uses sanitize.PathName to clean the input, keeping only ASCII alphanumeric
// characters, hyphens, and underscores. The result is truncated to 64 characters.
// Returns empty string if the input cannot be sanitized to a valid name.
func SuggestWalletName(name string) string {
	suggested := sanitize.PathName(name)
	if suggested == "" {
		return ""
	}
	if len(suggested) > 64 {
		suggested = suggested[:64]
	}
	return suggested
}
