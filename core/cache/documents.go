package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/adalundhe/producticons/core/icontheme"
)

const defaultDocumentEntries = 32

// ParsedDocument is a successfully parsed theme document with the warnings
// produced while parsing it.
type ParsedDocument struct {
	Document *icontheme.Document
	Warnings []string
}

// DocumentCache reuses parsed documents for identical content at the same
// location. Documents are immutable once parsed, so entries are shared.
type DocumentCache struct {
	entries *lru.Cache[string, ParsedDocument]
	stats   *CacheStats
}

// NewDocumentCache creates a cache holding up to size documents.
func NewDocumentCache(size int) (*DocumentCache, error) {
	if size <= 0 {
		size = defaultDocumentEntries
	}

	d := &DocumentCache{stats: NewCacheStats()}
	entries, err := lru.NewWithEvict[string, ParsedDocument](size, d.handleEviction)
	if err != nil {
		return nil, err
	}
	d.entries = entries
	return d, nil
}

func (d *DocumentCache) handleEviction(_ string, _ ParsedDocument) {
	d.stats.RecordEviction()
}

// DocumentKey identifies content read from location.
func DocumentKey(location *url.URL, content []byte) string {
	sum := sha256.Sum256(content)
	loc := ""
	if location != nil {
		loc = location.String()
	}
	return loc + "#" + hex.EncodeToString(sum[:])
}

// Get returns the parsed document for key.
func (d *DocumentCache) Get(key string) (ParsedDocument, bool) {
	doc, ok := d.entries.Get(key)
	if !ok {
		d.stats.RecordMiss()
		return ParsedDocument{}, false
	}
	d.stats.RecordHit()
	return doc, true
}

// Add stores a parsed document.
func (d *DocumentCache) Add(key string, doc ParsedDocument) {
	d.entries.Add(key, doc)
	d.stats.RecordSet()
}

// Len returns the number of cached documents.
func (d *DocumentCache) Len() int {
	return d.entries.Len()
}

// Stats returns a snapshot of the cache statistics.
func (d *DocumentCache) Stats() *CacheStats {
	return d.stats.Snapshot()
}
