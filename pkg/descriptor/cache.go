package descriptor

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Current schema version - increment when the cached layout changes
const cacheSchema = 1

// Cache stores decoded pages as MessagePack, keyed by a hash of the source
// bytes and format, so unchanged documents skip parsing. A nil *Cache is
// valid and caches nothing. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// OpenCache returns a cache in dir, or in $XDG_CACHE_HOME/spawn (falling
// back to ~/.cache/spawn) when dir is empty.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "spawn")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Load decodes the document at path, using the cache when the content has
// not changed since the last load.
func (c *Cache) Load(path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	f := FormatFromPath(path)
	if f == FormatAuto {
		f = sniff(data)
	}

	key := cacheKey(f, data)
	if page, ok, err := c.get(key); err == nil && ok {
		return page, nil
	}

	page, err := decode(data, f, path)
	if err != nil {
		return nil, err
	}
	// A page that cannot be cached is still returned.
	_ = c.put(key, page)
	return page, nil
}

func cacheKey(f Format, data []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d\x00%s\x00", cacheSchema, f)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, "pages", key+".mp")
}

func (c *Cache) put(key string, page *Page) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var buf bytes.Buffer
	if err := EncodeMsgPack(&buf, []any{cacheSchema, page.Value()}); err != nil {
		return err
	}

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

func (c *Cache) get(key string) (*Page, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	v, err := decodeMsgPack(data)
	if err != nil {
		return nil, false, err
	}
	entry, ok := v.([]any)
	if !ok || len(entry) != 2 || entry[0] != cacheSchema {
		return nil, false, nil
	}
	page, err := FromValue(entry[1])
	if err != nil {
		return nil, false, err
	}
	return page, true, nil
}

// DropAll removes every cached page.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "pages"))
}
