package extract

import (
	"regexp"
	"strings"

	"github.com/lexigraph/lexigraph/internal/model"
)

var (
	// Capitalized word sequences, optionally hyphenated ("Safety Valve",
	// "Bio-reactor"). A single capitalized word also matches; the
	// validator weeds out sentence-initial ordinary words via the
	// stopword rule.
	rePhrase = regexp.MustCompile(`\b[A-Z][A-Za-z0-9]*(?:-[A-Za-z0-9]+| [A-Z][A-Za-z0-9]*)*\b`)

	// Acronym-like tokens ("SCADA", "PLC4").
	reAcronym = regexp.MustCompile(`\b[A-Z]{2,8}[0-9]{0,3}\b`)
)

// PatternStrategy is the regex fallback used when no morphological
// dictionary covers the document language.
type PatternStrategy struct{}

// NewPatternStrategy creates the regex fallback strategy.
func NewPatternStrategy() *PatternStrategy {
	return &PatternStrategy{}
}

// Name returns the extraction method tag.
func (s *PatternStrategy) Name() model.ExtractionMethod {
	return model.MethodPattern
}

// Capture finds capitalized sequences and acronym tokens. Overlapping
// captures are collapsed onto the longer phrase match.
func (s *PatternStrategy) Capture(text string) []Span {
	if text == "" {
		return nil
	}

	var spans []Span
	covered := make([][2]int, 0)

	for _, loc := range rePhrase.FindAllStringIndex(text, -1) {
		start := trimDeterminer(text, loc[0], loc[1])
		if start >= loc[1] {
			continue
		}
		spans = append(spans, Span{Text: text[start:loc[1]], Start: start, End: loc[1]})
		covered = append(covered, [2]int{loc[0], loc[1]})
	}

	for _, loc := range reAcronym.FindAllStringIndex(text, -1) {
		if overlaps(covered, loc[0], loc[1]) {
			continue
		}
		spans = append(spans, Span{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}

	return spans
}

// Sentence-initial determiners get capitalized and glued onto the
// phrase match; the term starts after them.
var leadingDeterminers = map[string]bool{
	"The": true, "A": true, "An": true, "This": true, "That": true,
	"These": true, "Those": true, "Each": true, "Every": true,
}

func trimDeterminer(text string, start, end int) int {
	phrase := text[start:end]
	for {
		i := strings.IndexByte(phrase, ' ')
		if i < 0 || !leadingDeterminers[phrase[:i]] {
			return start
		}
		start += i + 1
		phrase = phrase[i+1:]
	}
}

func overlaps(covered [][2]int, start, end int) bool {
	for _, c := range covered {
		if start < c[1] && end > c[0] {
			return true
		}
	}
	return false
}
