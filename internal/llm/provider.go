// Package llm suggests domain tags for glossary entries through an
// optional language-model provider. Suggestions feed RELATED_TO
// inference and review tooling only; the validator never consults them.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexigraph/lexigraph/internal/model"
)

// Provider defines the interface for tag-suggestion backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// SuggestTags proposes domain tags for a glossary term
	SuggestTags(ctx context.Context, req TagRequest) (*TagResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// TagRequest contains the input for tag suggestion
type TagRequest struct {
	// Term is the canonical glossary term
	Term string

	// Language is the term's BCP-47 language tag
	Language string

	// Definition is the term's primary definition, used as context
	Definition string

	// MaxTags caps the number of suggested tags
	MaxTags int

	// Model overrides the configured model for this request
	Model string
}

// TagResponse contains the provider's suggestions
type TagResponse struct {
	// Tags are normalized lowercase domain tags
	Tags []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 300,
	}
}

// defaultMaxTags bounds suggestions per term.
const defaultMaxTags = 5

// BuildPrompt constructs the tag-suggestion prompt
func BuildPrompt(req TagRequest) string {
	maxTags := req.MaxTags
	if maxTags == 0 {
		maxTags = defaultMaxTags
	}

	prompt := fmt.Sprintf(`You are labeling terms for a technical glossary.

Suggest up to %d short domain tags for the term below. Rules:
1. Output ONLY a comma-separated list of tags, nothing else.
2. Tags are lowercase, one or two words each.
3. Tags describe the term's technical domain, not its definition.
4. If you cannot tell the domain, output nothing.

Term: %s (language: %s)`, maxTags, req.Term, req.Language)

	if req.Definition != "" {
		prompt += fmt.Sprintf("\nDefinition: %s", req.Definition)
	}
	return prompt
}

// parseTags normalizes a provider's raw response into a clean tag list:
// lowercase, trimmed, deduplicated, capped at maxTags. It tolerates
// bullet lists and one-per-line output in place of the requested
// comma-separated format.
func parseTags(raw string, maxTags int) []string {
	if maxTags <= 0 {
		maxTags = defaultMaxTags
	}

	split := func(r rune) bool { return r == ',' || r == '\n' || r == ';' }

	seen := make(map[string]bool)
	var tags []string
	for _, part := range strings.FieldsFunc(raw, split) {
		tag := strings.ToLower(strings.TrimSpace(part))
		tag = strings.TrimLeft(tag, "-*• \t")
		tag = strings.Trim(tag, ".\"'`")
		if tag == "" || len(tag) > 40 || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}
