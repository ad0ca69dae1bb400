package tsquery

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when NewCache is given a non-positive size.
const DefaultCacheSize = 1024

// Cache memoizes Compile. Only successful compilations are cached.
// It is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, string]
}

// NewCache returns a cache holding up to size compiled expressions.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// MustNewCache is NewCache that panics on error. lru.New only fails for a
// non-positive size, which NewCache never passes it.
func MustNewCache(size int) *Cache {
	c, err := NewCache(size)
	if err != nil {
		panic(err)
	}
	return c
}

// Compile returns the cached rendering of input, compiling it on a miss.
func (c *Cache) Compile(input string) (string, error) {
	if q, ok := c.entries.Get(input); ok {
		return q, nil
	}
	q, err := Compile(input)
	if err != nil {
		return "", err
	}
	c.entries.Add(input, q)
	return q, nil
}

func (c *Cache) Len() int { return c.entries.Len() }
