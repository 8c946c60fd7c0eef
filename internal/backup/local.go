package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumenwallet/lumen/internal/fileutil"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// backupFilePerm restricts archives to the owning user. The payload is
// encrypted, but the manifest is plaintext.
const backupFilePerm = 0o600

// LocalProvider stores archives in a directory on the local filesystem.
type LocalProvider struct {
	dir string
}

// NewLocalProvider creates a local provider rooted at dir, creating the
// directory if it does not exist.
func NewLocalProvider(dir string) (*LocalProvider, error) {
	if dir == "" {
		return nil, lumenerr.Wrap(lumenerr.ErrInvalidInput, "backup directory not configured")
	}

	if err := os.MkdirAll(dir, fileutil.DirPerm); err != nil {
		return nil, lumenerr.Wrap(err, "creating backup directory %s", dir)
	}

	return &LocalProvider{dir: dir}, nil
}

// Name returns the provider's registered name.
func (p *LocalProvider) Name() string {
	return ProviderLocal
}

// Upload writes the archive atomically and returns its absolute path.
func (p *LocalProvider) Upload(_ context.Context, filename string, data []byte) (string, error) {
	path, err := p.archivePath(filename)
	if err != nil {
		return "", err
	}

	if err := fileutil.WriteAtomic(path, data, backupFilePerm); err != nil {
		return "", lumenerr.Wrap(err, "writing backup %s", filename)
	}

	return path, nil
}

// Download reads an archive by filename.
func (p *LocalProvider) Download(_ context.Context, filename string) ([]byte, error) {
	path, err := p.archivePath(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is rooted in the configured backup directory
	if os.IsNotExist(err) {
		return nil, lumenerr.WithDetails(ErrBackupNotFound, map[string]string{"file": filename})
	}
	if err != nil {
		return nil, lumenerr.Wrap(err, "reading backup %s", filename)
	}

	return data, nil
}

// List returns the archive filenames in the backup directory, sorted.
func (p *LocalProvider) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, lumenerr.Wrap(err, "reading backup directory %s", p.dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), BackupExtension) {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// archivePath resolves filename under the provider directory, rejecting
// names that would escape it.
func (p *LocalProvider) archivePath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", lumenerr.Wrap(lumenerr.ErrInvalidInput, "invalid backup filename %q", filename)
	}
	return filepath.Join(p.dir, filename), nil
}
