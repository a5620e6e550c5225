// Package cache remembers split results per input file so unchanged inputs
// are not re-split.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gnoswap-labs/tokensplit/internal/types"
)

type entry struct {
	hash    string
	depHash string
	tokens  []types.Token
}

// Cache entries are invalidated when the input's content changes or when
// the dependency file (the rules file) changes.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	dependency string
}

func New(dependency string) *Cache {
	return &Cache{
		entries:    make(map[string]entry),
		dependency: dependency,
	}
}

// Get returns the cached result for filename if neither filename nor the
// dependency file changed since Set.
func (c *Cache) Get(filename string) ([]types.Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[filename]
	if !ok {
		return nil, false
	}
	hash, err := fileHash(filename)
	if err != nil || hash != e.hash || c.dependencyHash() != e.depHash {
		delete(c.entries, filename)
		return nil, false
	}
	return e.tokens, true
}

func (c *Cache) Set(filename string, tokens []types.Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash, err := fileHash(filename)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", filename, err)
	}
	c.entries[filename] = entry{hash: hash, depHash: c.dependencyHash(), tokens: tokens}
	return nil
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *Cache) dependencyHash() string {
	if c.dependency == "" {
		return ""
	}
	hash, err := fileHash(c.dependency)
	if err != nil {
		return ""
	}
	return hash
}

func fileHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
