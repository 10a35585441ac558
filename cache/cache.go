// Package cache stores per-file analysis contributions on disk so unchanged
// recordings are not decoded again on later runs.
//
// Entries are msgpack-encoded and keyed by a digest of the file identity and
// the analysis options. Unreadable or corrupt entries are treated as misses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/justapithecus/flightlog/types"
)

// formatVersion is bumped when the entry layout or the analysis semantics
// change.
const formatVersion = 2

const entrySuffix = ".msgpack"

// Key identifies one analysis of one file.
type Key struct {
	Reader    string
	Path      string
	Threshold float64
	Pilot     string
}

// entry is the on-disk record.
type entry struct {
	Version       int                      `msgpack:"v"`
	Path          string                   `msgpack:"path"`
	Contributions []types.FileContribution `msgpack:"contributions"`
}

// Cache is a directory of contribution entries. A nil *Cache is valid and
// always misses.
type Cache struct {
	dir string
}

// New opens (creating if needed) a cache rooted at dir.
func New(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Digest returns the entry name for k, folding in the file's absolute path,
// size and modification time. Fails when the file cannot be stat'ed.
// Callers take the digest before decoding the file and use it for both Get
// and Put, so a file changed mid-analysis is stored under the identity its
// contents were read with.
func Digest(k Key) (string, error) {
	abs, err := filepath.Abs(k.Path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}

	h := sha256.New()
	for _, part := range []string{
		k.Reader,
		abs,
		strconv.FormatInt(info.Size(), 10),
		strconv.FormatInt(info.ModTime().UnixNano(), 10),
		strconv.FormatFloat(k.Threshold, 'g', -1, 64),
		k.Pilot,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached contributions stored under digest.
func (c *Cache) Get(digest string) ([]types.FileContribution, bool) {
	if c == nil || digest == "" {
		return nil, false
	}

	data, err := os.ReadFile(c.entryPath(digest))
	if err != nil {
		return nil, false
	}
	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if e.Version != formatVersion {
		return nil, false
	}
	if e.Contributions == nil {
		e.Contributions = []types.FileContribution{}
	}
	return e.Contributions, true
}

// Put stores contributions for the file at path under digest. The entry is
// written to a temporary file and renamed into place.
func (c *Cache) Put(digest, path string, contribs []types.FileContribution) error {
	if c == nil {
		return nil
	}
	if digest == "" {
		return errors.New("cache digest is required")
	}

	data, err := msgpack.Marshal(entry{
		Version:       formatVersion,
		Path:          path,
		Contributions: contribs,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, digest+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmpName, c.entryPath(digest)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

func (c *Cache) entryPath(digest string) string {
	return filepath.Join(c.dir, digest+entrySuffix)
}
