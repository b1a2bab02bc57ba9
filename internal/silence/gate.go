// Package silence implements the Silence Protocol: refusing to surface an
// answer when computed confidence falls below a context-sensitive threshold,
// rather than returning a possibly-wrong answer.
package silence

import (
	"fmt"

	"github.com/vaultmind/vault-agent/internal/citation"
	"github.com/vaultmind/vault-agent/internal/confidence"
)

const refusalTemplate = "I'm not confident enough in the available evidence to answer this reliably " +
	"(confidence %.0f%%, below the %.0f%% required). " +
	"You could rephrase the question to be more specific, or add documents that cover this topic."

// Gate is a pure decision function: no I/O, deterministic for given inputs.
type Gate struct {
	Threshold          float64
	FollowUpRelaxation float64
}

// Verdict is the gate's decision over one generated answer.
type Verdict struct {
	Answer             string
	Citations          []citation.Citation
	Silenced           bool
	EffectiveThreshold float64
}

func NewGate(threshold, followUpRelaxation float64) Gate {
	return Gate{
		Threshold:          threshold,
		FollowUpRelaxation: followUpRelaxation,
	}
}

// Apply decides whether the answer may be surfaced. A follow-up question is
// held to a relaxed threshold since it inherits grounding from the prior
// turn. A silenced answer is replaced with the fixed refusal text and loses
// its citations.
func (g Gate) Apply(conf confidence.Breakdown, hasHistory bool, answer string, citations []citation.Citation) Verdict {
	effective := g.EffectiveThreshold(hasHistory)

	if conf.Overall < effective {
		return Verdict{
			Answer:             fmt.Sprintf(refusalTemplate, conf.Overall*100, effective*100),
			Citations:          nil,
			Silenced:           true,
			EffectiveThreshold: effective,
		}
	}

	return Verdict{
		Answer:             answer,
		Citations:          citations,
		Silenced:           false,
		EffectiveThreshold: effective,
	}
}

// EffectiveThreshold returns the configured threshold, relaxed for queries
// carrying conversation history.
func (g Gate) EffectiveThreshold(hasHistory bool) float64 {
	if hasHistory {
		return g.Threshold * g.FollowUpRelaxation
	}
	return g.Threshold
}
