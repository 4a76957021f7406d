// Package validate filters term candidates through sequential quality
// rules. Acceptance is strictly rule-based; the quality score is
// reporting-only and never gates a candidate.
package validate

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/lexigraph/lexigraph/internal/metric"
	"github.com/lexigraph/lexigraph/internal/model"
)

// Rejection reasons, one per rule plus "malformed" for unusable input.
const (
	ReasonStopword  = "stopword"
	ReasonFragment  = "fragment"
	ReasonSymbols   = "symbols"
	ReasonLength    = "length"
	ReasonFrequency = "frequency"
	ReasonArtifact  = "artifact"
	ReasonMalformed = "malformed"
)

// Result is the outcome of validating one candidate.
type Result struct {
	Accepted bool
	Reason   string  // rejection rule, empty when accepted
	Quality  float64 // weighted pass fraction, dashboards only
}

// rule is one independently testable check. ok=true means the candidate
// passes this rule.
type rule struct {
	name   string
	weight float64
	ok     func(v *Validator, c model.TermCandidate) bool
}

var rules = []rule{
	{ReasonStopword, 0.25, (*Validator).passStopword},
	{ReasonFragment, 0.20, (*Validator).passFragment},
	{ReasonSymbols, 0.15, (*Validator).passSymbols},
	{ReasonLength, 0.15, (*Validator).passLength},
	{ReasonFrequency, 0.15, (*Validator).passFrequency},
	{ReasonArtifact, 0.10, (*Validator).passArtifact},
}

// Validator applies the rule sequence to candidates. It is safe for
// concurrent use; all state is immutable after construction.
type Validator struct {
	cfg       *model.Config
	stopwords map[string]bool
	fragments map[string]bool
	counters  *metric.Counters
}

// NewValidator builds a validator from an already validated config.
// counters may be nil for callers that do not report.
func NewValidator(cfg *model.Config, counters *metric.Counters) *Validator {
	fragments := make(map[string]bool, len(cfg.Validation.FragmentSuffixes))
	for _, f := range cfg.Validation.FragmentSuffixes {
		fragments[f] = true
	}

	return &Validator{
		cfg:       cfg,
		stopwords: cfg.StopwordSet(),
		fragments: fragments,
		counters:  counters,
	}
}

// Validate runs the rule sequence, short-circuiting on the first
// rejection. It never panics: malformed candidates auto-reject.
func (v *Validator) Validate(cand model.TermCandidate) Result {
	v.count(metric.KeyCandidates)

	if cand.Text == "" || cand.NormalizedForm == "" {
		v.count(metric.RejectKey(ReasonMalformed))
		return Result{Accepted: false, Reason: ReasonMalformed}
	}

	for _, r := range rules {
		if !r.ok(v, cand) {
			v.count(metric.RejectKey(r.name))
			return Result{Accepted: false, Reason: r.name, Quality: v.Quality(cand)}
		}
	}

	v.count(metric.KeyAccepted)
	return Result{Accepted: true, Quality: v.Quality(cand)}
}

// Quality computes the weighted fraction of rules the candidate passes.
// Reporting only; acceptance never consults it.
func (v *Validator) Quality(cand model.TermCandidate) float64 {
	var passed, total float64
	for _, r := range rules {
		total += r.weight
		if r.ok(v, cand) {
			passed += r.weight
		}
	}
	if total == 0 {
		return 0
	}
	return passed / total
}

// Rule 1: language stopwords and configured domain generic words.
func (v *Validator) passStopword(c model.TermCandidate) bool {
	return !v.stopwords[c.NormalizedForm]
}

// Rule 2: known bound-morpheme fragments, or a lowercase initial on a
// candidate that did not come from manual entry.
func (v *Validator) passFragment(c model.TermCandidate) bool {
	if v.fragments[c.NormalizedForm] {
		return false
	}
	first := []rune(c.Text)[0]
	if unicode.IsLower(first) && c.Method != model.MethodManual {
		return false
	}
	return true
}

// Rule 3: disallowed symbols or digit ratio above threshold.
func (v *Validator) passSymbols(c model.TermCandidate) bool {
	if strings.ContainsAny(c.Text, v.cfg.Validation.DisallowedSymbols) {
		return false
	}
	runes := []rune(c.Text)
	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits) <= v.cfg.Validation.MaxDigitRatio*float64(len(runes))
}

// Rule 4: length bounds, inclusive on both ends.
func (v *Validator) passLength(c model.TermCandidate) bool {
	n := len([]rune(c.Text))
	return n >= v.cfg.Extraction.MinTermLength && n <= v.cfg.Extraction.MaxTermLength
}

// Rule 5: minimum frequency, bypassed for manually entered terms.
func (v *Validator) passFrequency(c model.TermCandidate) bool {
	if c.Method == model.MethodManual {
		return true
	}
	return c.Frequency >= v.cfg.Extraction.MinFrequency
}

var (
	reResidualDoubled = regexp.MustCompile(`([a-zA-Z])\1{2,}`)
	reBrokenHyphen    = regexp.MustCompile(`\w- |\w-$`)
)

// Rule 6: OCR artifacts that survived normalization.
func (v *Validator) passArtifact(c model.TermCandidate) bool {
	if reResidualDoubled.MatchString(c.Text) {
		return false
	}
	return !reBrokenHyphen.MatchString(c.Text)
}

func (v *Validator) count(key string) {
	if v.counters != nil {
		v.counters.Inc(key)
	}
}
