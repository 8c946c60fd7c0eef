package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lumenwallet/lumen/internal/fileutil"
)

// On-disk modes for the cache file and its parent directory.
const (
	cacheFileMode = 0o640
	cacheDirMode  = 0o750
)

// ErrCorruptCache marks a cache file that could not be parsed. Load
// quarantines such a file and still hands back a usable empty cache.
var ErrCorruptCache = errors.New("cache file is corrupted")

// FileStorage persists an ActivityCache as indented JSON at a fixed path.
type FileStorage struct {
	path string
}

// NewFileStorage returns storage backed by the file at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file's location.
func (s *FileStorage) Path() string { return s.path }

// Exists reports whether the backing file is present.
func (s *FileStorage) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save writes the cache to disk, creating parent directories as needed. The
// write is atomic so an interrupted save cannot leave a truncated file.
func (s *FileStorage) Save(cache *ActivityCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), cacheDirMode); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, cacheFileMode); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Load reads the cache from disk. A missing file yields an empty cache. A
// file that fails to parse is moved aside so the next Save starts clean, and
// an empty cache comes back along with an error wrapping ErrCorruptCache.
func (s *FileStorage) Load() (*ActivityCache, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewActivityCache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var cache ActivityCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return NewActivityCache(), s.quarantine(err)
	}
	if cache.Entries == nil {
		cache.Entries = make(map[string]ActivityCacheEntry)
	}
	return &cache, nil
}

// quarantine renames the unparseable cache file aside, keeping it around for
// inspection without blocking future saves.
func (s *FileStorage) quarantine(parseErr error) error {
	aside := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().UTC().UnixNano())
	if err := os.Rename(s.path, aside); err != nil {
		return fmt.Errorf("%w: %w (also failed to move file: %w)", ErrCorruptCache, parseErr, err)
	}
	return fmt.Errorf("%w: %w (moved to %s)", ErrCorruptCache, parseErr, aside)
}

// Delete removes the backing file. A file that is already gone is not an
// error.
func (s *FileStorage) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cache file: %w", err)
	}
	return nil
}
