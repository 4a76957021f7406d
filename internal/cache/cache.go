// Package cache remembers fingerprints of ingested documents so that
// re-running ingest over an unchanged corpus skips the extraction work.
// A changed document produces a different fingerprint and is processed
// again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Fingerprint derives the cache key for a document from its ID and
// full text content.
func Fingerprint(docID, content string) string {
	hash := sha256.Sum256([]byte(docID + "\x00" + content))
	return "lexigraph:v1:" + hex.EncodeToString(hash[:])
}

// Ingest is an in-memory fingerprint set with TTL expiry.
type Ingest struct {
	cache *gocache.Cache
}

// NewIngest creates an ingest cache. Entries expire after ttl and are
// swept every cleanupInterval.
func NewIngest(ttl, cleanupInterval time.Duration) *Ingest {
	return &Ingest{cache: gocache.New(ttl, cleanupInterval)}
}

// Seen reports whether the fingerprint was marked and has not expired.
func (i *Ingest) Seen(key string) bool {
	_, found := i.cache.Get(key)
	return found
}

// Mark records a fingerprint with the default TTL.
func (i *Ingest) Mark(key string) {
	i.cache.Set(key, struct{}{}, gocache.DefaultExpiration)
}

// Forget removes a fingerprint, forcing the next ingest to reprocess.
func (i *Ingest) Forget(key string) {
	i.cache.Delete(key)
}

// Clear drops all fingerprints.
func (i *Ingest) Clear() {
	i.cache.Flush()
}
