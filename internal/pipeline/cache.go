package pipeline

import "sync"

// renderCache keeps rendered HTML per source path, keyed by content
// fingerprint, across runs of one processor.
type renderCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	fingerprint string
	html        string
}

func newRenderCache() *renderCache {
	return &renderCache{entries: make(map[string]cacheEntry)}
}

func (c *renderCache) get(path, fingerprint string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok || e.fingerprint != fingerprint {
		return "", false
	}
	return e.html, true
}

func (c *renderCache) put(path, fingerprint, html string) {
	c.mu.Lock()
	c.entries[path] = cacheEntry{fingerprint: fingerprint, html: html}
	c.mu.Unlock()
}

// retain drops every entry whose path is not in keep.
func (c *renderCache) retain(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.entries {
		if !keep[p] {
			delete(c.entries, p)
		}
	}
}

func (c *renderCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
