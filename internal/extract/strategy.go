// Package extract produces raw term candidates from normalized page text.
//
// Two interchangeable strategies exist: linguistic chunking over a
// morphological dictionary, and a regex pattern fallback for languages
// without dictionary coverage. The strategy is fixed at construction;
// callers never branch on it at runtime.
package extract

import (
	"fmt"

	"github.com/lexigraph/lexigraph/internal/model"
)

// Span is one raw capture within a page: the matched text plus its
// offsets into the page text.
type Span struct {
	Text  string
	Start int
	End   int
}

// Strategy captures raw term spans from one page of text. Implementations
// must tolerate empty input and return no spans rather than an error.
type Strategy interface {
	Name() model.ExtractionMethod
	Capture(text string) []Span
}

// NewStrategy selects a capture strategy for the given language.
//
//   - "linguistic" requires dictionary coverage and fails without it
//   - "pattern" always works
//   - "auto" prefers linguistic when a dictionary covers the language
func NewStrategy(kind, language string) (Strategy, error) {
	switch kind {
	case "pattern":
		return NewPatternStrategy(), nil

	case "linguistic":
		s, err := NewLinguisticStrategy(language)
		if err != nil {
			return nil, fmt.Errorf("linguistic strategy: %w", err)
		}
		return s, nil

	case "auto":
		if s, err := NewLinguisticStrategy(language); err == nil {
			return s, nil
		}
		return NewPatternStrategy(), nil

	default:
		return nil, fmt.Errorf("unknown extraction strategy: %s (supported: linguistic, pattern, auto)", kind)
	}
}
