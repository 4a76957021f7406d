package extract

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/lexigraph/lexigraph/internal/model"
)

// IPA dictionary feature labels used for chunking decisions.
const (
	posNoun       = "名詞"   // noun
	subPosBound   = "非自立"  // bound (dependent) noun, function-word-like
	subPosPronoun = "代名詞"  // pronoun
	subPosNumber  = "数"    // numeral
)

// LinguisticStrategy chunks noun runs out of morphologically analyzed
// text. Heads are phrase-final, so the last token of a run is treated as
// the syntactic root; runs rooted at a function word, a non-noun, or a
// non-alphabetic token are discarded.
type LinguisticStrategy struct {
	tok      *tokenizer.Tokenizer
	language string
}

// NewLinguisticStrategy builds a tokenizer for the language. Only
// languages with dictionary coverage are supported; callers fall back to
// the pattern strategy for everything else.
func NewLinguisticStrategy(language string) (*LinguisticStrategy, error) {
	if language != "ja" {
		return nil, fmt.Errorf("no dictionary for language %q", language)
	}

	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("build tokenizer: %w", err)
	}

	return &LinguisticStrategy{tok: t, language: language}, nil
}

// Name returns the extraction method tag.
func (s *LinguisticStrategy) Name() model.ExtractionMethod {
	return model.MethodLinguistic
}

// Capture tokenizes the text and emits each maximal run of noun tokens
// as one span.
func (s *LinguisticStrategy) Capture(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokens := s.tok.Tokenize(text)

	var spans []Span
	var run []tokenizer.Token

	flush := func() {
		if len(run) == 0 {
			return
		}
		if span, ok := buildSpan(text, run); ok {
			spans = append(spans, span)
		}
		run = nil
	}

	for _, tok := range tokens {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			flush()
			continue
		}

		if isNoun(tok) {
			run = append(run, tok)
			continue
		}
		flush()
	}
	flush()

	return spans
}

// buildSpan locates a noun run inside the page text and applies the
// root checks. Offsets are recomputed by search so they stay byte
// offsets into the original text.
func buildSpan(text string, run []tokenizer.Token) (Span, bool) {
	root := run[len(run)-1]
	if !isContentNoun(root) || !hasLetter(root.Surface) {
		return Span{}, false
	}

	var b strings.Builder
	for _, tok := range run {
		b.WriteString(tok.Surface)
	}
	phrase := b.String()

	start := strings.Index(text, phrase)
	if start < 0 {
		return Span{}, false
	}

	return Span{Text: phrase, Start: start, End: start + len(phrase)}, true
}

func isNoun(tok tokenizer.Token) bool {
	f := tok.Features()
	return len(f) > 0 && f[0] == posNoun
}

// isContentNoun rejects roots that are function-word-like: bound nouns,
// pronouns and bare numerals.
func isContentNoun(tok tokenizer.Token) bool {
	f := tok.Features()
	if len(f) == 0 || f[0] != posNoun {
		return false
	}
	if len(f) > 1 {
		switch f[1] {
		case subPosBound, subPosPronoun, subPosNumber:
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
