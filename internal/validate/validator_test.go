package validate

import (
	"strings"
	"testing"

	"github.com/lexigraph/lexigraph/internal/metric"
	"github.com/lexigraph/lexigraph/internal/model"
)

func cand(text string, freq int) model.TermCandidate {
	return model.TermCandidate{
		Text:           text,
		NormalizedForm: strings.ToLower(text),
		Language:       "en",
		Frequency:      freq,
		Method:         model.MethodPattern,
	}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	cfg := model.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	return NewValidator(cfg, nil)
}

func TestValidate_ScenarioAcceptReject(t *testing.T) {
	// Candidates {"Reactor" freq=5, "The" freq=50, "Tion" freq=3} with
	// min_frequency=2: only "Reactor" survives.
	v := newTestValidator(t)

	tests := []struct {
		text       string
		freq       int
		accepted   bool
		wantReason string
	}{
		{"Reactor", 5, true, ""},
		{"The", 50, false, ReasonStopword},
		{"Tion", 3, false, ReasonFragment},
	}

	for _, tt := range tests {
		res := v.Validate(cand(tt.text, tt.freq))
		if res.Accepted != tt.accepted {
			t.Errorf("Validate(%q) accepted = %v, want %v", tt.text, res.Accepted, tt.accepted)
		}
		if res.Reason != tt.wantReason {
			t.Errorf("Validate(%q) reason = %q, want %q", tt.text, res.Reason, tt.wantReason)
		}
	}
}

func TestValidate_StopwordsAlwaysReject(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Validation.Stopwords = []string{"the", "valve"}
	v := NewValidator(cfg, nil)

	for _, text := range []string{"The", "Valve", "valve"} {
		res := v.Validate(cand(text, 10))
		if res.Accepted {
			t.Errorf("stopword %q was accepted", text)
		}
		if res.Reason != ReasonStopword {
			t.Errorf("stopword %q rejected as %q, want %q", text, res.Reason, ReasonStopword)
		}
	}
}

func TestValidate_LengthBoundary(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Extraction.MinTermLength = 4
	v := NewValidator(cfg, nil)

	// Exactly min_term_length passes.
	if res := v.Validate(cand("Pump", 5)); !res.Accepted {
		t.Errorf("length == min should pass, rejected as %q", res.Reason)
	}

	// min_term_length - 1 fails.
	if res := v.Validate(cand("Pum", 5)); res.Accepted || res.Reason != ReasonLength {
		t.Errorf("length == min-1 should fail on length, got accepted=%v reason=%q",
			res.Accepted, res.Reason)
	}
}

func TestValidate_FrequencyRule(t *testing.T) {
	v := newTestValidator(t)

	if res := v.Validate(cand("Reactor", 1)); res.Accepted || res.Reason != ReasonFrequency {
		t.Errorf("freq below minimum: accepted=%v reason=%q", res.Accepted, res.Reason)
	}

	// Manual entries bypass the frequency gate.
	manual := cand("Reactor", 0)
	manual.Method = model.MethodManual
	if res := v.Validate(manual); !res.Accepted {
		t.Errorf("manual entry should bypass frequency, rejected as %q", res.Reason)
	}
}

func TestValidate_SymbolAndDigitRules(t *testing.T) {
	v := newTestValidator(t)

	if res := v.Validate(cand("Rea<tor", 5)); res.Accepted || res.Reason != ReasonSymbols {
		t.Errorf("disallowed symbol: accepted=%v reason=%q", res.Accepted, res.Reason)
	}

	if res := v.Validate(cand("R2345678", 5)); res.Accepted || res.Reason != ReasonSymbols {
		t.Errorf("digit-heavy: accepted=%v reason=%q", res.Accepted, res.Reason)
	}
}

func TestValidate_ArtifactRule(t *testing.T) {
	v := newTestValidator(t)

	if res := v.Validate(cand("Reeeactor", 5)); res.Accepted || res.Reason != ReasonArtifact {
		t.Errorf("residual doubling: accepted=%v reason=%q", res.Accepted, res.Reason)
	}

	if res := v.Validate(cand("Reac- tor", 5)); res.Accepted || res.Reason != ReasonArtifact {
		t.Errorf("broken hyphenation: accepted=%v reason=%q", res.Accepted, res.Reason)
	}

	// An ordinary hyphenated term is not an artifact.
	if res := v.Validate(cand("Bio-reactor", 5)); !res.Accepted {
		t.Errorf("hyphenated term rejected as %q", res.Reason)
	}
}

func TestValidate_MalformedNeverPanics(t *testing.T) {
	v := newTestValidator(t)

	res := v.Validate(model.TermCandidate{})
	if res.Accepted || res.Reason != ReasonMalformed {
		t.Errorf("malformed candidate: accepted=%v reason=%q", res.Accepted, res.Reason)
	}
}

func TestValidate_CountersAudit(t *testing.T) {
	cfg := model.DefaultConfig()
	counters := metric.NewCounters()
	v := NewValidator(cfg, counters)

	v.Validate(cand("Reactor", 5))
	v.Validate(cand("The", 50))
	v.Validate(cand("Tion", 3))

	snap := counters.Snapshot()
	if snap[metric.KeyCandidates] != 3 {
		t.Errorf("candidates_total = %d, want 3", snap[metric.KeyCandidates])
	}
	if snap[metric.KeyAccepted] != 1 {
		t.Errorf("accepted = %d, want 1", snap[metric.KeyAccepted])
	}
	if snap[metric.RejectKey(ReasonStopword)] != 1 {
		t.Errorf("rejected_stopword = %d, want 1", snap[metric.RejectKey(ReasonStopword)])
	}
	if snap[metric.RejectKey(ReasonFragment)] != 1 {
		t.Errorf("rejected_fragment = %d, want 1", snap[metric.RejectKey(ReasonFragment)])
	}
}

func TestQuality_ReportingOnly(t *testing.T) {
	v := newTestValidator(t)

	// A stopword fails one rule but still gets a partial score.
	res := v.Validate(cand("The", 50))
	if res.Accepted {
		t.Fatal("stopword accepted")
	}
	if res.Quality <= 0 || res.Quality >= 1 {
		t.Errorf("Quality = %.2f, want partial score in (0,1)", res.Quality)
	}

	if q := v.Quality(cand("Reactor", 5)); q != 1.0 {
		t.Errorf("Quality for clean candidate = %.2f, want 1.0", q)
	}
}
