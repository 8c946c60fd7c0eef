package backup

import (
	"context"
	"fmt"

	"github.com/agnivade/levenshtein"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// Provider names accepted by NewProvider. Matching is exact: casing and
// whitespace are the caller's problem.
const (
	ProviderLocal   = "local"
	ProviderGDrive  = "gdrive"
	ProviderDropbox = "dropbox"
)

// maxProviderSuggestionDistance is the highest edit distance at which a
// misspelled provider name still earns a suggestion.
const maxProviderSuggestionDistance = 2

// Provider stores and retrieves backup archives.
type Provider interface {
	// Name returns the provider's registered name.
	Name() string

	// Upload writes archive bytes under the given filename and returns the
	// provider-specific location (a path or a file ID).
	Upload(ctx context.Context, filename string, data []byte) (string, error)

	// Download retrieves archive bytes by filename.
	// Returns ErrBackupNotFound if no archive exists under that name.
	Download(ctx context.Context, filename string) ([]byte, error)

	// List returns the filenames of all archives the provider holds,
	// filtered to the backup extension.
	List(ctx context.Context) ([]string, error)
}

// Config carries the per-provider settings NewProvider dispatches on.
type Config struct {
	// LocalDir is the archive directory for the local provider.
	LocalDir string

	// GDrive configures the Google Drive provider.
	GDrive GDriveConfig

	// Dropbox configures the Dropbox provider.
	Dropbox DropboxConfig
}

// ProviderNames returns the names NewProvider accepts, sorted.
func ProviderNames() []string {
	return []string{ProviderDropbox, ProviderGDrive, ProviderLocal}
}

// NewProvider creates the named backup provider. The name must match one of
// the Provider* constants exactly; anything else fails with
// ErrNotImplemented, with a suggestion attached when the name is close to a
// known provider.
func NewProvider(ctx context.Context, name string, cfg Config) (Provider, error) {
	switch name {
	case ProviderLocal:
		return NewLocalProvider(cfg.LocalDir)
	case ProviderGDrive:
		return NewGDriveProvider(ctx, cfg.GDrive)
	case ProviderDropbox:
		return NewDropboxProvider(cfg.Dropbox)
	default:
		err := lumenerr.Wrap(lumenerr.ErrNotImplemented, "backup provider %q", name)
		err = lumenerr.WithDetails(err, map[string]string{"provider": name})
		if suggestion := SuggestProvider(name); suggestion != "" {
			err = lumenerr.WithSuggestion(err, fmt.Sprintf("did you mean %q?", suggestion))
		}
		return nil, err
	}
}

// SuggestProvider returns the known provider name closest to the given one,
// or "" when nothing is within edit distance 2.
func SuggestProvider(name string) string {
	if name == "" {
		return ""
	}

	bestName := ""
	bestDistance := maxProviderSuggestionDistance + 1
	for _, candidate := range ProviderNames() {
		distance := levenshtein.ComputeDistance(name, candidate)
		if distance < bestDistance {
			bestDistance = distance
			bestName = candidate
		}
	}
	return bestName
}
