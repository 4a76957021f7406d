// Package normalize repairs optical-scan artifacts in extracted page text.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// "pressu re" style spurious intra-word splits: a lowercase word broken
	// by a single space before a short lowercase tail.
	reSplitWord = regexp.MustCompile(`([a-z]{3,}) ([a-z]{1,3})\b`)

	// Hyphenation broken across a line: "bio-\nreactor".
	reBrokenHyphen = regexp.MustCompile(`(\w)-\s*\n\s*(\w)`)

	// Same letter repeated three or more times is a scan artifact in any
	// language this pipeline handles ("vaalve", "vaaalve").
	reTripled = regexp.MustCompile(`([a-zA-Z])\1{2,}`)

	reWhitespace = regexp.MustCompile(`[ \t]+`)
)

// Text repairs common OCR artifacts and collapses whitespace. It never
// fails: input that matches no repair pattern passes through unchanged.
func Text(raw string) string {
	if raw == "" {
		return ""
	}

	out := reBrokenHyphen.ReplaceAllString(raw, "$1$2")
	out = reTripled.ReplaceAllString(out, "$1$1")
	out = repairDoubled(out)
	out = repairSplits(out)
	out = reWhitespace.ReplaceAllString(out, " ")

	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// repairDoubled halves words where every letter was scanned twice
// ("tthhee" -> "the"). Words with any unpaired letter pass through.
func repairDoubled(text string) string {
	words := strings.Fields(text)
	changed := false
	for i, w := range words {
		r := []rune(w)
		if len(r) < 4 || len(r)%2 != 0 {
			continue
		}
		paired := true
		for j := 0; j < len(r); j += 2 {
			if r[j] != r[j+1] || !isLetter(r[j]) {
				paired = false
				break
			}
		}
		if !paired {
			continue
		}
		half := make([]rune, 0, len(r)/2)
		for j := 0; j < len(r); j += 2 {
			half = append(half, r[j])
		}
		words[i] = string(half)
		changed = true
	}
	if !changed {
		return text
	}
	return strings.Join(words, " ")
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// repairSplits rejoins words the scanner broke apart. Only fragments that
// are not standalone words are rejoined, so "for the" survives while
// "pressu re" becomes "pressure".
func repairSplits(text string) string {
	return reSplitWord.ReplaceAllStringFunc(text, func(m string) string {
		parts := reSplitWord.FindStringSubmatch(m)
		if isCommonWord(parts[1]) || isCommonWord(parts[2]) {
			return m
		}
		return parts[1] + parts[2]
	})
}

// Short function words that legitimately follow another word; joining
// across them would corrupt normal prose.
var commonShort = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "in": true, "is": true, "it": true,
	"of": true, "on": true, "or": true, "the": true, "to": true, "was": true,
	"all": true, "can": true, "has": true, "its": true, "not": true, "one": true,
	"our": true, "out": true, "per": true, "set": true, "two": true, "use": true,
	"with": true, "from": true, "that": true, "this": true, "each": true,
	"have": true, "into": true, "more": true, "must": true, "when": true,
	"will": true, "than": true, "then": true, "they": true, "used": true,
	"only": true, "over": true, "such": true, "were": true, "which": true,
}

func isCommonWord(w string) bool {
	return commonShort[strings.ToLower(w)]
}

// Form produces the canonical lookup form of a term: lowercased with
// interior whitespace collapsed to single spaces.
func Form(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}
