package report

import (
	"context"
	"sync"
)

type cacheKey struct {
	student, spreadsheet string
}

// Cache memoizes commentary per (student, spreadsheet). It has no eviction: entries live
// as long as the process, which is acceptable for the size of an academy roster.
type Cache struct {
	gen Generator

	mu      sync.RWMutex
	entries map[cacheKey]Commentary
}

func NewCache(gen Generator) *Cache {
	return &Cache{gen: gen, entries: make(map[cacheKey]Commentary)}
}

// Get returns the cached commentary of student, generating it on a miss.
// Failed generations are not cached.
func (c *Cache) Get(ctx context.Context, spreadsheetID string, req Request) (Commentary, error) {
	key := cacheKey{student: req.Student, spreadsheet: spreadsheetID}
	c.mu.RLock()
	cm, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cm, nil
	}

	cm, err := c.gen.Generate(ctx, req)
	if err != nil {
		return Commentary{}, err
	}
	c.mu.Lock()
	c.entries[key] = cm
	c.mu.Unlock()
	return cm, nil
}

// Invalidate drops the cached commentary of student, e.g. after the student's scores changed.
func (c *Cache) Invalidate(spreadsheetID, student string) {
	c.mu.Lock()
	delete(c.entries, cacheKey{student: student, spreadsheet: spreadsheetID})
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
