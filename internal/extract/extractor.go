package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/normalize"
)

// maxNonAlnumRatio rejects captures that are mostly punctuation or
// symbols, typically scan garbage.
const maxNonAlnumRatio = 0.30

// Extractor turns documents into deduplicated per-document candidate
// sets using the configured strategy plus shared post-filters.
type Extractor struct {
	strategy Strategy
	cfg      model.ExtractionConfig
}

// New builds an extractor for a document language. The strategy is fixed
// here; see NewStrategy.
func New(cfg model.ExtractionConfig, language string) (*Extractor, error) {
	strategy, err := NewStrategy(cfg.Strategy, language)
	if err != nil {
		return nil, err
	}
	return &Extractor{strategy: strategy, cfg: cfg}, nil
}

// Method reports which strategy the extractor was built with.
func (e *Extractor) Method() model.ExtractionMethod {
	return e.strategy.Name()
}

// Document extracts the candidate set for one document. Candidates are
// deduplicated on their normalized form; frequency counts every
// occurrence, locations keep the first and last. An empty document
// yields an empty set, never an error.
func (e *Extractor) Document(doc model.Document) []model.TermCandidate {
	byForm := make(map[string]*model.TermCandidate)
	var order []string

	for _, page := range doc.Pages {
		for _, span := range e.strategy.Capture(page.Text) {
			if !e.keep(span.Text) {
				continue
			}

			form := normalize.Form(span.Text)
			loc := model.SourceLocation{
				DocID: doc.ID,
				Page:  page.Number,
				Span:  [2]int{span.Start, span.End},
			}

			if cand, ok := byForm[form]; ok {
				cand.Frequency++
				// Keep first and last occurrence only.
				if len(cand.Locations) == 1 {
					cand.Locations = append(cand.Locations, loc)
				} else {
					cand.Locations[1] = loc
				}
				continue
			}

			byForm[form] = &model.TermCandidate{
				Text:            span.Text,
				NormalizedForm:  form,
				Language:        doc.Language,
				Frequency:       1,
				Locations:       []model.SourceLocation{loc},
				Method:          e.strategy.Name(),
				ContextSentence: sentenceAround(page.Text, span.Start),
			}
			order = append(order, form)
		}
	}

	out := make([]model.TermCandidate, 0, len(order))
	for _, form := range order {
		cand := byForm[form]
		cand.LowConfidence = cand.Frequency < e.cfg.MinFrequency
		out = append(out, *cand)
	}
	return out
}

// keep applies the strategy-independent post-filters.
func (e *Extractor) keep(text string) bool {
	runes := []rune(text)
	if len(runes) < e.cfg.MinTermLength || len(runes) > e.cfg.MaxTermLength {
		return false
	}

	// Captures starting with a lowercase fragment are chunking debris.
	if unicode.IsLower(runes[0]) {
		return false
	}

	letters, digits, other := 0, 0, 0
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		case r == ' ':
			// Spaces are neutral.
		default:
			other++
		}
	}

	if letters == 0 {
		return false // purely numeric or symbolic
	}
	if float64(other) > maxNonAlnumRatio*float64(len(runes)) {
		return false
	}
	return true
}

// Sentence boundaries for context capture; covers Latin and CJK
// terminators.
const sentenceTerminators = ".!?。！？\n"

// sentenceAround returns the sentence containing the given offset,
// trimmed. Used as the definition context for aggregation.
func sentenceAround(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}

	start := 0
	if i := strings.LastIndexAny(text[:offset], sentenceTerminators); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[i:])
		start = i + size
	}

	end := len(text)
	if i := strings.IndexAny(text[offset:], sentenceTerminators); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[offset+i:])
		end = offset + i + size
	}

	return strings.TrimSpace(text[start:end])
}
