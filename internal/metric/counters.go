// Package metric tracks pipeline accept/reject counters for reporting.
package metric

import "sync"

// Well-known counter keys. Rejection counters are composed as
// "rejected_" + rule name.
const (
	KeyCandidates     = "candidates_total"
	KeyAccepted       = "accepted"
	KeyDocuments      = "documents_total"
	KeyDocumentsError = "documents_failed"
	KeyEdgesCommitted = "edges_committed"
)

// RejectKey returns the counter key for a rejection rule.
func RejectKey(rule string) string {
	return "rejected_" + rule
}

// Counters is a flat, thread-safe counter map. Rejected candidates
// vanish from the glossary silently; these counters are how they stay
// auditable.
type Counters struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewCounters creates an empty counter set.
func NewCounters() *Counters {
	return &Counters{counts: make(map[string]int64)}
}

// Inc increments a counter by one.
func (c *Counters) Inc(key string) {
	c.Add(key, 1)
}

// Add increments a counter by n.
func (c *Counters) Add(key string, n int64) {
	c.mu.Lock()
	c.counts[key] += n
	c.mu.Unlock()
}

// Get returns a single counter value.
func (c *Counters) Get(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}

// Snapshot returns a copy of all counters for the reporting collaborator.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
