// Package versioncache holds, per (CIK, form type), the most recently
// processed filing's content. It is the comparison baseline for the next
// filing of the same key.
//
// A Cache lives for one run: the pipeline creates it at run start and drops
// it at run end. There is no eviction; at most one entry per key is live, so
// memory is bounded by companies × form types, not by filing volume.
//
// A Cache is not safe for concurrent writers. The pipeline is its only writer.
package versioncache

import "github.com/seenimoa/edgarwatch/pkg/models"

// Key identifies a comparison baseline.
type Key struct {
	CIK      string
	FormType string
}

// Cache maps keys to the last processed filing content.
type Cache struct {
	entries map[Key]models.FilingContent
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]models.FilingContent)}
}

// Get returns the baseline for key, or nil when none has been stored.
// The returned content is read-only.
func (c *Cache) Get(key Key) *models.FilingContent {
	content, ok := c.entries[key]
	if !ok {
		return nil
	}
	return &content
}

// Put overwrites the baseline for key. The section map is copied so later
// mutation by the caller cannot alter the stored baseline.
func (c *Cache) Put(key Key, content models.FilingContent) {
	secs := make(map[string]string, len(content.Sections))
	for k, v := range content.Sections {
		secs[k] = v
	}
	content.Sections = secs
	c.entries[key] = content
}

// Len returns the number of live keys.
func (c *Cache) Len() int {
	return len(c.entries)
}
