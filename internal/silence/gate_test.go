package silence

import (
	"math"
	"strings"
	"testing"

	"github.com/vaultmind/vault-agent/internal/citation"
	"github.com/vaultmind/vault-agent/internal/confidence"
)

func TestApply_EngagesBelowThreshold(t *testing.T) {
	gate := NewGate(0.85, 0.8)
	citations := []citation.Citation{{CitationIndex: 1, DocumentID: "d1"}}

	// 0.760 < 0.85: the answer is suppressed.
	verdict := gate.Apply(confidence.Breakdown{Overall: 0.760}, false, "The rate is 4%. [1]", citations)

	if !verdict.Silenced {
		t.Fatal("expected silence protocol to engage")
	}
	if len(verdict.Citations) != 0 {
		t.Errorf("silenced answer must carry no citations, got %d", len(verdict.Citations))
	}
	if verdict.Answer == "The rate is 4%. [1]" {
		t.Error("silenced answer must be replaced with the refusal text")
	}
	if !strings.Contains(verdict.Answer, "rephrase") || !strings.Contains(verdict.Answer, "add documents") {
		t.Errorf("refusal text must offer both remediation hints, got %q", verdict.Answer)
	}
}

func TestApply_RelaxedThresholdForFollowUps(t *testing.T) {
	gate := NewGate(0.85, 0.8)
	citations := []citation.Citation{{CitationIndex: 1, DocumentID: "d1"}}

	// With history the same statistics score ~0.810 and the threshold drops
	// to 0.68, so the answer passes through unchanged.
	verdict := gate.Apply(confidence.Breakdown{Overall: 0.810}, true, "The rate is 4%. [1]", citations)

	if verdict.Silenced {
		t.Fatal("expected answer to pass with relaxed threshold")
	}
	if verdict.Answer != "The rate is 4%. [1]" {
		t.Errorf("answer must pass through unmodified, got %q", verdict.Answer)
	}
	if len(verdict.Citations) != 1 {
		t.Errorf("citations must pass through, got %d", len(verdict.Citations))
	}
}

func TestEffectiveThreshold(t *testing.T) {
	tests := []struct {
		name       string
		threshold  float64
		hasHistory bool
		want       float64
	}{
		{name: "no history unchanged", threshold: 0.85, hasHistory: false, want: 0.85},
		{name: "history relaxes by factor", threshold: 0.85, hasHistory: true, want: 0.68},
		{name: "custom threshold no history", threshold: 0.9, hasHistory: false, want: 0.9},
		{name: "custom threshold with history", threshold: 0.9, hasHistory: true, want: 0.72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.threshold, 0.8)
			got := gate.EffectiveThreshold(tt.hasHistory)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EffectiveThreshold(%v) = %.4f, want %.4f", tt.hasHistory, got, tt.want)
			}
		})
	}
}

func TestApply_BoundaryIsInclusive(t *testing.T) {
	gate := NewGate(0.85, 0.8)

	// Exactly at threshold: not silenced (only strictly-below is refused).
	verdict := gate.Apply(confidence.Breakdown{Overall: 0.85}, false, "answer", nil)
	if verdict.Silenced {
		t.Error("confidence equal to the threshold must pass")
	}
}

func TestApply_IsDeterministic(t *testing.T) {
	gate := NewGate(0.85, 0.8)
	conf := confidence.Breakdown{Overall: 0.4}

	first := gate.Apply(conf, false, "answer", nil)
	second := gate.Apply(conf, false, "answer", nil)

	if first.Answer != second.Answer {
		t.Error("refusal text must be deterministic for identical inputs")
	}
}
