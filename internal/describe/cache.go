package describe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DiskCache stores lookup results as JSON files under a directory, one file
// per term, expiring after the TTL. Writes go through a temp file and rename
// so a concurrent reader never sees a partial entry.
type DiskCache struct {
	dir string
	ttl time.Duration
}

func NewDiskCache(dir string, ttl time.Duration) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached description for term if present and fresh.
func (c *DiskCache) Get(term string) (*Description, bool) {
	data, err := os.ReadFile(c.path(term))
	if err != nil {
		return nil, false
	}

	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		// A corrupt entry behaves like a miss and gets overwritten on Put.
		return nil, false
	}
	if time.Since(d.FetchedAt) > c.ttl {
		return nil, false
	}
	return &d, true
}

// Put stores the description, replacing any previous entry for the term.
func (c *DiskCache) Put(d *Description) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}

	tmp := filepath.Join(c.dir, uuid.New().String()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.path(d.Term)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Prune removes expired entries. Invoked opportunistically, never required
// for correctness since Get checks freshness itself.
func (c *DiskCache) Prune() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		full := filepath.Join(c.dir, entry.Name())
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		var d Description
		if err := json.Unmarshal(data, &d); err != nil || time.Since(d.FetchedAt) > c.ttl {
			if rmErr := os.Remove(full); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				return rmErr
			}
		}
	}
	return nil
}

func (c *DiskCache) path(term string) string {
	sum := sha256.Sum256([]byte(term))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
