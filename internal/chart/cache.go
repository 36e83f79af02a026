package chart

import (
	"bytes"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/evdash/internal/core"
)

// Cache renders each chart at most once. The record collection is static,
// so a rendered SVG never goes stale. Concurrent first requests for the
// same chart share one render.
type Cache struct {
	summary core.Summary

	group singleflight.Group
	mu    sync.RWMutex
	svgs  map[Name][]byte
}

// NewCache creates a cache over a precomputed summary.
func NewCache(summary core.Summary) *Cache {
	return &Cache{
		summary: summary,
		svgs:    make(map[Name][]byte),
	}
}

// SVG returns the rendered chart, rendering it on first use.
func (c *Cache) SVG(n Name) ([]byte, error) {
	c.mu.RLock()
	svg, ok := c.svgs[n]
	c.mu.RUnlock()
	if ok {
		return svg, nil
	}

	v, err, _ := c.group.Do(string(n), func() (any, error) {
		var buf bytes.Buffer
		if err := Render(&buf, n, c.summary); err != nil {
			return nil, err
		}
		out := buf.Bytes()

		c.mu.Lock()
		c.svgs[n] = out
		c.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Summary returns the aggregates the charts are drawn from.
func (c *Cache) Summary() core.Summary {
	return c.summary
}
