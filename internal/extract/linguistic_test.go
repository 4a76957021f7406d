package extract

import "testing"

func TestLinguisticStrategy_UnsupportedLanguage(t *testing.T) {
	if _, err := NewLinguisticStrategy("en"); err == nil {
		t.Error("expected error for language without dictionary coverage")
	}
}

func TestLinguisticStrategy_CapturesNounRuns(t *testing.T) {
	s, err := NewLinguisticStrategy("ja")
	if err != nil {
		t.Fatalf("NewLinguisticStrategy: %v", err)
	}

	spans := s.Capture("安全弁は圧力を制御する。")
	if len(spans) == 0 {
		t.Fatal("expected noun runs to be captured")
	}

	found := false
	for _, span := range spans {
		if span.Text == "安全弁" {
			found = true
		}
		if span.Text == "は" || span.Text == "を" {
			t.Errorf("particle %q captured as a span", span.Text)
		}
	}
	if !found {
		t.Errorf("expected compound noun 安全弁 in spans, got %v", spans)
	}
}

func TestLinguisticStrategy_EmptyInput(t *testing.T) {
	s, err := NewLinguisticStrategy("ja")
	if err != nil {
		t.Fatalf("NewLinguisticStrategy: %v", err)
	}
	if spans := s.Capture("   "); len(spans) != 0 {
		t.Errorf("blank input should yield no spans, got %v", spans)
	}
}
