package confidence

import (
	"math"
	"testing"

	"github.com/vaultmind/vault-agent/internal/citation"
	"github.com/vaultmind/vault-agent/internal/config"
	"github.com/vaultmind/vault-agent/internal/retrieval"
)

func chunksWithSimilarity(similarities ...float64) []retrieval.RetrievedChunk {
	chunks := make([]retrieval.RetrievedChunk, 0, len(similarities))
	for i, s := range similarities {
		chunks = append(chunks, retrieval.RetrievedChunk{
			ChunkID:    "c" + string(rune('1'+i)),
			DocumentID: "d" + string(rune('1'+i)),
			Similarity: s,
		})
	}
	return chunks
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestScore_ZeroChunksDefensiveDefault(t *testing.T) {
	calc := NewCalculator(config.DefaultPolicy())

	breakdown := calc.Score(nil, nil, false)
	if breakdown.Overall != 0.5 {
		t.Errorf("expected defensive default 0.5, got %.2f", breakdown.Overall)
	}
}

func TestScore_ReferenceScenario(t *testing.T) {
	// avg similarity 0.72, 2 citations across 2 distinct documents:
	// coverage 0.9, agreement 2/3, certainty 2/3, overall ~0.7600
	calc := NewCalculator(config.DefaultPolicy())

	chunks := chunksWithSimilarity(0.70, 0.74)
	citations := []citation.Citation{
		{CitationIndex: 1, DocumentID: "d1"},
		{CitationIndex: 2, DocumentID: "d2"},
	}

	breakdown := calc.Score(chunks, citations, false)

	if !almostEqual(breakdown.RetrievalCoverage, 0.9) {
		t.Errorf("coverage = %.4f, want 0.9", breakdown.RetrievalCoverage)
	}
	if !almostEqual(breakdown.SourceAgreement, 2.0/3.0) {
		t.Errorf("agreement = %.4f, want %.4f", breakdown.SourceAgreement, 2.0/3.0)
	}
	if !almostEqual(breakdown.ModelCertainty, 2.0/3.0) {
		t.Errorf("certainty = %.4f, want %.4f", breakdown.ModelCertainty, 2.0/3.0)
	}
	want := 0.4*0.9 + 0.4*(2.0/3.0) + 0.2*(2.0/3.0)
	if !almostEqual(breakdown.Overall, want) {
		t.Errorf("overall = %.4f, want %.4f", breakdown.Overall, want)
	}

	// Same statistics with history: flat +0.05 boost
	withHistory := calc.Score(chunks, citations, true)
	if !almostEqual(withHistory.Overall, want+0.05) {
		t.Errorf("overall with history = %.4f, want %.4f", withHistory.Overall, want+0.05)
	}
}

func TestScore_NoCitationsFloor(t *testing.T) {
	calc := NewCalculator(config.DefaultPolicy())

	breakdown := calc.Score(chunksWithSimilarity(0.9, 0.9), nil, false)
	if !almostEqual(breakdown.ModelCertainty, 0.3) {
		t.Errorf("expected certainty floor 0.3, got %.4f", breakdown.ModelCertainty)
	}
	if !almostEqual(breakdown.SourceAgreement, 0.0) {
		t.Errorf("expected zero agreement without citations, got %.4f", breakdown.SourceAgreement)
	}
}

func TestScore_FactorsSaturate(t *testing.T) {
	calc := NewCalculator(config.DefaultPolicy())

	chunks := chunksWithSimilarity(0.95, 0.92, 0.98, 0.91)
	citations := []citation.Citation{
		{CitationIndex: 1, DocumentID: "d1"},
		{CitationIndex: 2, DocumentID: "d2"},
		{CitationIndex: 3, DocumentID: "d3"},
		{CitationIndex: 4, DocumentID: "d4"},
	}

	breakdown := calc.Score(chunks, citations, false)
	if breakdown.RetrievalCoverage != 1.0 {
		t.Errorf("coverage should saturate at 1.0, got %.4f", breakdown.RetrievalCoverage)
	}
	if breakdown.SourceAgreement != 1.0 {
		t.Errorf("agreement should saturate at 1.0, got %.4f", breakdown.SourceAgreement)
	}
	if breakdown.ModelCertainty != 1.0 {
		t.Errorf("certainty should saturate at 1.0, got %.4f", breakdown.ModelCertainty)
	}
}

func TestScore_CeilingNeverExceeded(t *testing.T) {
	calc := NewCalculator(config.DefaultPolicy())

	chunks := chunksWithSimilarity(1.0, 1.0, 1.0)
	citations := []citation.Citation{
		{CitationIndex: 1, DocumentID: "d1"},
		{CitationIndex: 2, DocumentID: "d2"},
		{CitationIndex: 3, DocumentID: "d3"},
	}

	breakdown := calc.Score(chunks, citations, true)
	if breakdown.Overall > 0.98 {
		t.Errorf("overall %.4f exceeds the 0.98 ceiling", breakdown.Overall)
	}
	if !almostEqual(breakdown.Overall, 0.98) {
		t.Errorf("perfect factors with history should hit the ceiling, got %.4f", breakdown.Overall)
	}
}

func TestScore_MonotonicInAverageSimilarity(t *testing.T) {
	calc := NewCalculator(config.DefaultPolicy())
	citations := []citation.Citation{{CitationIndex: 1, DocumentID: "d1"}}

	prev := -1.0
	for _, avg := range []float64{0.1, 0.3, 0.5, 0.7, 0.8, 0.9} {
		breakdown := calc.Score(chunksWithSimilarity(avg, avg), citations, false)
		if breakdown.Overall < prev {
			t.Errorf("overall decreased at avg similarity %.2f: %.4f < %.4f", avg, breakdown.Overall, prev)
		}
		prev = breakdown.Overall
	}
}

func TestScore_OverallAlwaysInRange(t *testing.T) {
	calc := NewCalculator(config.DefaultPolicy())

	cases := []struct {
		chunks     []retrieval.RetrievedChunk
		citations  []citation.Citation
		hasHistory bool
	}{
		{chunks: chunksWithSimilarity(0.0), citations: nil, hasHistory: false},
		{chunks: chunksWithSimilarity(0.0, 0.0), citations: nil, hasHistory: true},
		{chunks: chunksWithSimilarity(1.0, 1.0, 1.0), citations: []citation.Citation{{CitationIndex: 1, DocumentID: "d1"}}, hasHistory: true},
	}

	for i, tc := range cases {
		breakdown := calc.Score(tc.chunks, tc.citations, tc.hasHistory)
		if breakdown.Overall < 0 || breakdown.Overall > 0.98 {
			t.Errorf("case %d: overall %.4f outside [0, 0.98]", i, breakdown.Overall)
		}
	}
}
