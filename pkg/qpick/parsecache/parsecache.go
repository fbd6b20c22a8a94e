// Package parsecache memoizes parser.Parser.Parse results behind an LRU
// cache, the way the teacher's token cache keeps repeated input strings
// from re-running tokenization, adapted here to cache full fingerprint
// output per (query, mode) pair.
package parsecache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/qpick/pkg/qpick/parser"
)

type key struct {
	query string
	mode  parser.Mode
}

// Cache wraps a parser.Parser with a bounded LRU memoizing Parse results.
type Cache struct {
	parser *parser.Parser
	cache  *lru.Cache[key, parser.Output]
}

// New creates a Cache of the given size around p. size <= 0 disables
// caching entirely (every call falls through to the parser).
func New(p *parser.Parser, size int) *Cache {
	if size <= 0 {
		return &Cache{parser: p}
	}
	c, err := lru.New[key, parser.Output](size)
	if err != nil {
		return &Cache{parser: p}
	}
	return &Cache{parser: p, cache: c}
}

// Parse returns the cached fingerprint for (query, mode), computing and
// storing it on a miss.
func (c *Cache) Parse(query string, mode parser.Mode) parser.Output {
	if c.cache == nil {
		return c.parser.Parse(query, mode)
	}

	k := key{query: query, mode: mode}
	if out, ok := c.cache.Get(k); ok {
		return out
	}

	out := c.parser.Parse(query, mode)
	c.cache.Add(k, out)
	return out
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
