package model

import "time"

// ValidationStatus tracks the review state of a glossary entry
type ValidationStatus string

const (
	StatusPending   ValidationStatus = "pending"
	StatusValidated ValidationStatus = "validated"
	StatusRejected  ValidationStatus = "rejected"
)

// Definition is one sourced definition attached to a glossary entry.
// Definitions are insertion-ordered; exactly one per entry is primary.
type Definition struct {
	Text        string    `json:"text"`
	SourceDocID string    `json:"source_doc_id,omitempty"` // Empty for manually entered definitions
	IsPrimary   bool      `json:"is_primary"`
	CreatedAt   time.Time `json:"created_at"`
}

// GlossaryEntry is a validated, persisted glossary term. There is exactly
// one entry per (canonical term, language) pair.
type GlossaryEntry struct {
	ID            string           `json:"id"`
	CanonicalTerm string           `json:"canonical_term"`
	Language      string           `json:"language"`
	Definitions   []Definition     `json:"definitions"`
	DomainTags    []string         `json:"domain_tags,omitempty"`
	Status        ValidationStatus `json:"validation_status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PrimaryDefinition returns the entry's primary definition.
// The second return is false for an entry with no definitions,
// which only occurs on malformed input.
func (e *GlossaryEntry) PrimaryDefinition() (Definition, bool) {
	for _, d := range e.Definitions {
		if d.IsPrimary {
			return d, true
		}
	}
	return Definition{}, false
}

// HasDefinition reports whether the entry already carries a definition
// with the same text from the same source document.
func (e *GlossaryEntry) HasDefinition(text, sourceDocID string) bool {
	for _, d := range e.Definitions {
		if d.Text == text && d.SourceDocID == sourceDocID {
			return true
		}
	}
	return false
}

// TagSet returns the entry's domain tags as a set.
func (e *GlossaryEntry) TagSet() map[string]bool {
	set := make(map[string]bool, len(e.DomainTags))
	for _, t := range e.DomainTags {
		set[t] = true
	}
	return set
}
