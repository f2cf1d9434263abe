// Package cache persists translations across invocations, keyed by a hash
// of one slide's original texts. A hit resolves the whole slide without a
// transformer call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Cache maps a page hash to the final texts of that slide, in extraction
// order.
type Cache struct {
	path    string
	entries map[string][]string
	dirty   bool
}

// Load reads the cache file at path. A missing file yields an empty cache;
// a corrupt one is discarded with a warning. Loading never fails.
func Load(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string][]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("could not read translation cache, starting empty")
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("translation cache is corrupt, starting empty")
		c.entries = make(map[string][]string)
	}
	return c
}

// Lookup returns the cached texts for hash when the entry exists and holds
// exactly n texts. A length mismatch is treated as a miss: the slide's run
// structure has changed since the entry was written.
func (c *Cache) Lookup(hash string, n int) ([]string, bool) {
	texts, ok := c.entries[hash]
	if !ok || len(texts) != n {
		return nil, false
	}
	return texts, true
}

// Store records the texts for hash, overwriting any previous entry.
func (c *Cache) Store(hash string, texts []string) {
	c.entries[hash] = texts
	c.dirty = true
}

// Save writes the cache back to its file when entries were added.
func (c *Cache) Save() error {
	if !c.dirty {
		return nil
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode translation cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write translation cache: %w", err)
	}
	c.dirty = false
	return nil
}

// Len reports the number of cached pages.
func (c *Cache) Len() int { return len(c.entries) }

// PageHash derives the cache key for one slide from its original texts.
func PageHash(texts []string) string {
	sum := sha256.Sum256([]byte(strings.Join(texts, "|")))
	return hex.EncodeToString(sum[:])
}
