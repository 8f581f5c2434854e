package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when CacheEntry format changes
const cacheSchemaVersion uint16 = 1

// CacheEntry is what the cache keeps for one generated page.
type CacheEntry struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Page         string
	Backend      string
	Output       []byte
	Instructions int
	Demos        int
}

// Cache keeps generated pages keyed by Digest: a process-local map in front
// of a directory of msgpack files. Thread-safe for concurrent access.
// A nil *Cache is valid and never hits.
type Cache struct {
	mu  sync.RWMutex
	dir string
	mem map[Digest]*CacheEntry

	hits   atomic.Int64
	misses atomic.Int64
}

// OpenCache opens the cache at the standard location for app:
// $XDG_CACHE_HOME/app, falling back to ~/.cache/app.
func OpenCache(app string) (*Cache, error) {
	dir, err := DefaultCacheDir(app)
	if err != nil {
		return nil, err
	}
	return OpenCacheDir(dir)
}

// DefaultCacheDir returns the directory OpenCache uses.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// OpenCacheDir opens (and creates) a cache rooted at dir.
func OpenCacheDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, mem: make(map[Digest]*CacheEntry)}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не держать тысячи файлов рядом
	return filepath.Join(c.dir, "pages", hexKey[:2], hexKey+".mp")
}

// Put stores an entry in memory and writes it to disk atomically.
func (c *Cache) Put(key Digest, entry *CacheEntry) (err error) {
	if c == nil || entry == nil {
		return nil
	}
	stored := *entry
	stored.Schema = cacheSchemaVersion

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem[key] = &stored

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if renamed {
			return
		}
		_ = f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(&stored); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get looks an entry up in memory, then on disk. Entries written by another
// schema version count as misses.
func (c *Cache) Get(key Digest) (*CacheEntry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return entry, true, nil
	}

	entry, ok, err := c.load(key)
	if err != nil || !ok {
		c.misses.Add(1)
		return nil, false, err
	}
	c.mu.Lock()
	c.mem[key] = entry
	c.mu.Unlock()
	c.hits.Add(1)
	return entry, true, nil
}

func (c *Cache) load(key Digest) (*CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var entry CacheEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Stats returns hit and miss counters since the cache was opened.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// DropAll removes every entry, in memory and on disk.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem = make(map[Digest]*CacheEntry)

	// переименуем каталог и удалим его целиком
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
