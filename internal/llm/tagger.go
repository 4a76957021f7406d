package llm

import (
	"context"
	"fmt"

	"github.com/lexigraph/lexigraph/internal/model"
)

// Tagger wraps a provider and applies suggestions to glossary entries.
// A nil Tagger (or one with a nil provider) is valid and suggests
// nothing, so callers never branch on whether tagging is enabled.
type Tagger struct {
	provider Provider
	maxTags  int
}

// NewTagger builds a tagger from configuration. Returns (nil, nil) when
// no provider is configured.
func NewTagger(config Config) (*Tagger, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return &Tagger{provider: provider, maxTags: defaultMaxTags}, nil
}

// Enabled reports whether the tagger has a working provider.
func (t *Tagger) Enabled() bool {
	return t != nil && t.provider != nil
}

// Suggest proposes domain tags for an entry using its primary
// definition as context. Returns nil tags when tagging is disabled.
func (t *Tagger) Suggest(ctx context.Context, entry *model.GlossaryEntry) ([]string, error) {
	if !t.Enabled() {
		return nil, nil
	}

	req := TagRequest{
		Term:     entry.CanonicalTerm,
		Language: entry.Language,
		MaxTags:  t.maxTags,
	}
	if def, ok := entry.PrimaryDefinition(); ok {
		req.Definition = def.Text
	}

	resp, err := t.provider.SuggestTags(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("suggest tags for %q: %w", entry.CanonicalTerm, err)
	}
	return resp.Tags, nil
}
