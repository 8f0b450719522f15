// Package cache persists the normalized dataset on disk, keyed by the
// source file's modification time. A cache entry is valid only while the
// source file exists and has not been modified after the entry was
// written; anything else is a miss and forces a fresh load.
//
// Two artifacts live in the cache directory: a zstd-compressed JSON blob
// of the records and a small JSON metadata file. Both are replaced
// atomically (write to a temp name, then rename) so a crash mid-write can
// never leave a partially written cache visible to the next reader.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"itrq/internal/errors"
	"itrq/internal/logging"
	"itrq/internal/records"
)

const (
	blobFile = "records.json.zst"
	metaFile = "cache-meta.json"
)

// Meta describes a persisted cache entry. Times are unix seconds, matching
// the source file's modification time resolution.
type Meta struct {
	FileMtime   float64 `json:"fileMtime"`
	CachedAt    float64 `json:"cachedAt"`
	RecordCount int     `json:"recordCount"`
}

// Age returns how long ago the entry was written.
func (m *Meta) Age() time.Duration {
	cached := time.Unix(int64(m.CachedAt), 0)
	return time.Since(cached)
}

// Store reads and writes cache artifacts in a single directory.
type Store struct {
	dir    string
	logger *logging.Logger
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on the first save.
func NewStore(dir string, logger *logging.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

func (s *Store) blobPath() string { return filepath.Join(s.dir, blobFile) }
func (s *Store) metaPath() string { return filepath.Join(s.dir, metaFile) }

// Exists reports whether both cache artifacts are present.
func (s *Store) Exists() bool {
	if _, err := os.Stat(s.blobPath()); err != nil {
		return false
	}
	if _, err := os.Stat(s.metaPath()); err != nil {
		return false
	}
	return true
}

// ReadMeta reads the metadata artifact.
func (s *Store) ReadMeta() (*Meta, error) {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		return nil, errors.New(errors.CacheCorrupt, "cache metadata unreadable", err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.CacheCorrupt, "cache metadata malformed", err)
	}
	return &m, nil
}

// Valid reports whether the cache entry may serve in place of reading the
// source: the entry must exist, decode, and have been written no earlier
// than the source file's last modification. A deleted source invalidates
// every entry.
func (s *Store) Valid(sourcePath string) bool {
	if !s.Exists() {
		return false
	}
	meta, err := s.ReadMeta()
	if err != nil {
		return false
	}

	mtime, ok := SourceMtime(sourcePath)
	if !ok {
		return false
	}
	return meta.FileMtime >= mtime
}

// Load deserializes the cached dataset. Any decode failure is reported as
// CacheCorrupt; callers treat it as a miss.
func (s *Store) Load() (*records.Dataset, *Meta, error) {
	meta, err := s.ReadMeta()
	if err != nil {
		return nil, nil, err
	}

	compressed, err := os.ReadFile(s.blobPath())
	if err != nil {
		return nil, nil, errors.New(errors.CacheCorrupt, "cache blob unreadable", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, nil, errors.New(errors.InternalError, "zstd reader init failed", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, errors.New(errors.CacheCorrupt, "cache blob decompression failed", err)
	}

	var recs []records.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, nil, errors.New(errors.CacheCorrupt, "cache blob malformed", err)
	}

	return &records.Dataset{
		Records:  recs,
		LoadedAt: time.Now(),
	}, meta, nil
}

// Save persists the records atomically along with metadata recording the
// source mtime. On failure all temporary artifacts are removed and an
// error is returned; callers log it as a warning and keep the in-memory
// dataset, losing only the cache-for-next-time.
func (s *Store) Save(recs []records.Record, sourceMtime float64) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("zstd writer init: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}

	meta := Meta{
		FileMtime:   sourceMtime,
		CachedAt:    float64(time.Now().Unix()),
		RecordCount: len(recs),
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	// Unique temp names so a concurrent writer cannot clobber our
	// in-flight artifacts.
	suffix := uuid.New().String()
	blobTmp := s.blobPath() + "." + suffix + ".tmp"
	metaTmp := s.metaPath() + "." + suffix + ".tmp"

	if err := os.WriteFile(blobTmp, compressed, 0644); err != nil {
		return fmt.Errorf("writing cache blob: %w", err)
	}
	if err := os.WriteFile(metaTmp, metaData, 0644); err != nil {
		_ = os.Remove(blobTmp)
		return fmt.Errorf("writing cache metadata: %w", err)
	}

	// Both writes succeeded; rename into place. Blob first so a crash
	// between renames leaves a stale-meta state that the validity check
	// resolves by reloading.
	if err := os.Rename(blobTmp, s.blobPath()); err != nil {
		_ = os.Remove(blobTmp)
		_ = os.Remove(metaTmp)
		return fmt.Errorf("installing cache blob: %w", err)
	}
	if err := os.Rename(metaTmp, s.metaPath()); err != nil {
		_ = os.Remove(metaTmp)
		return fmt.Errorf("installing cache metadata: %w", err)
	}

	s.logger.Info("Cached records", map[string]interface{}{
		"records": len(recs),
		"dir":     s.dir,
	})
	return nil
}

// Clear removes both cache artifacts unconditionally.
func (s *Store) Clear() error {
	var firstErr error
	for _, p := range []string{s.blobPath(), s.metaPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SourceMtime returns the source file's modification time as unix seconds,
// and whether the file exists.
func SourceMtime(path string) (float64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return float64(info.ModTime().Unix()), true
}
