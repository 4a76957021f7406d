package relate

import (
	"strings"
	"unicode"
)

// stripForm reduces a canonical term to its bare letter sequence, so
// hyphenation and spacing variants ("Bio-reactor", "bioreactor")
// compare as equal.
func stripForm(term string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(term) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// trigrams returns the rune trigram set of s. Strings shorter than
// three runes contribute themselves as a single gram.
func trigrams(s string) map[string]bool {
	runes := []rune(s)
	set := make(map[string]bool)
	if len(runes) < 3 {
		if len(runes) > 0 {
			set[s] = true
		}
		return set
	}
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = true
	}
	return set
}

// Similarity is the Dice coefficient over rune trigrams of the stripped
// forms. Symmetric and bounded [0,1]; used verbatim as the SYNONYM_OF
// confidence.
func Similarity(a, b string) float64 {
	ga := trigrams(stripForm(a))
	gb := trigrams(stripForm(b))
	if len(ga) == 0 || len(gb) == 0 {
		return 0
	}

	common := 0
	for g := range ga {
		if gb[g] {
			common++
		}
	}
	return 2 * float64(common) / float64(len(ga)+len(gb))
}

// tokenFields splits a canonical term into lowercase tokens.
func tokenFields(term string) []string {
	return strings.Fields(strings.ToLower(term))
}

// suffixTokens reports whether child's token sequence strictly extends
// parent's: child is multi-word and ends in exactly parent's tokens
// ("Safety Valve" extends "Valve", "Pressure Safety Valve" extends
// "Safety Valve").
func suffixTokens(child, parent string) bool {
	ct := strings.Fields(strings.ToLower(child))
	pt := strings.Fields(strings.ToLower(parent))
	if len(ct) < 2 || len(pt) == 0 || len(ct) <= len(pt) {
		return false
	}
	offset := len(ct) - len(pt)
	for i, tok := range pt {
		if ct[offset+i] != tok {
			return false
		}
	}
	return true
}
