// Package cache provides a content-addressed on-disk cache keyed on a
// document's type tag and local candidates, so identical inputs skip the
// remote call entirely.
package cache

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/kestrelcase/intakex/internal/errs"
	"github.com/kestrelcase/intakex/internal/model"
)

// Cache reads and writes extraction results under dir, one file per key.
type Cache struct {
	dir string
}

// New returns a Cache rooted at dir. dir is created if missing.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &errs.IOError{Path: dir, Err: err}
	}
	return &Cache{dir: dir}, nil
}

// Key returns the cache key for a document: the 64-bit FNV-1a hash of the
// doc type tag and the serialized local candidates, hex-encoded.
func Key(dt model.DocType, local model.LocalCandidates) (string, error) {
	localJSON, err := json.Marshal(local)
	if err != nil {
		return "", fmt.Errorf("marshal local candidates: %w", err)
	}
	h := fnv.New64a()
	h.Write([]byte(dt.Tag()))
	h.Write([]byte("\n"))
	h.Write(localJSON)
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached result for key, or ok=false on a miss.
func (c *Cache) Get(key string) (result model.ExtractionResult, ok bool, err error) {
	b, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &errs.IOError{Path: c.path(key), Err: err}
	}
	var r model.ExtractionResult
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, false, &errs.ParseError{Raw: string(b), Err: err}
	}
	return r, true, nil
}

// Put stores result under key. Writes are not fsync'd: a torn write on crash
// is acceptable here since a missing or corrupt cache entry just degrades to
// a cache miss on the next run.
func (c *Cache) Put(key string, result model.ExtractionResult) error {
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(key), b, 0o644); err != nil {
		return &errs.IOError{Path: c.path(key), Err: err}
	}
	return nil
}
