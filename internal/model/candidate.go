package model

// ExtractionMethod records which strategy produced a candidate
type ExtractionMethod string

const (
	MethodLinguistic ExtractionMethod = "linguistic" // morphological noun-phrase chunking
	MethodPattern    ExtractionMethod = "pattern"    // regex capture fallback
	MethodManual     ExtractionMethod = "manual"     // entered by a curator, bypasses frequency gate
)

// SourceLocation points at one occurrence of a candidate in a document
type SourceLocation struct {
	DocID string `json:"doc_id"`
	Page  int    `json:"page"`
	Span  [2]int `json:"span"` // byte offsets [start, end) within the page
}

// TermCandidate is an unvalidated term found in a single document.
// Candidates are ephemeral: they exist between extraction and validation
// and are never persisted.
type TermCandidate struct {
	Text            string           `json:"text"`                 // As it appears in the document
	NormalizedForm  string           `json:"normalized_form"`      // Lowercased, whitespace-collapsed
	Language        string           `json:"language"`             // BCP-47 primary subtag (e.g. "en", "ja")
	Frequency       int              `json:"frequency"`            // Occurrences within the source document
	Locations       []SourceLocation `json:"locations"`            // First and last occurrence
	Method          ExtractionMethod `json:"extraction_method"`
	ContextSentence string           `json:"context,omitempty"`    // Sentence around the first occurrence
	LowConfidence   bool             `json:"low_confidence"`       // Frequency below the configured minimum
}

// FirstLocation returns the earliest recorded occurrence, or a zero
// location when the candidate carries no provenance.
func (c TermCandidate) FirstLocation() SourceLocation {
	if len(c.Locations) == 0 {
		return SourceLocation{}
	}
	return c.Locations[0]
}
