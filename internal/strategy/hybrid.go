package strategy

import (
	"fmt"

	"github.com/kotori-ai/kotori/pkg/models"
)

// agreementBonus is added to the fused score when the keyword and
// semantic stages agree on the winner.
const agreementBonus = 0.2

// agreementCap caps the fused confidence in the agreement case.
const agreementCap = 0.95

// fuse combines the keyword and semantic stage results into the final
// decision. Candidate ids emitted by either stage are validated against
// the registry before use; an unresolvable candidate is treated as no
// candidate at all.
func (r *Router) fuse(kw keywordScore, sem semanticScore) models.Decision {
	if kw.ID != "" && !r.registry.Has(kw.ID) {
		kw = keywordScore{}
	}
	if sem.ID != "" && !r.registry.Has(sem.ID) {
		sem.ID = ""
		sem.Confidence = 0
	}

	sk := kw.Confidence * r.cfg.KeywordWeight
	ss := sem.Confidence * r.cfg.SemanticWeight
	rationale := fmt.Sprintf("keyword=%s (Sk=%.2f) semantic=%s (Ss=%.2f)", kw.ID, sk, sem.ID, ss)

	// Empty or unmatched message: fall back to the generalist.
	if kw.ID == "" && sem.ID == "" {
		return models.Decision{
			ResponderID: r.registry.DefaultID(),
			Confidence:  r.cfg.DefaultConfidence,
			Rationale:   "no keyword or semantic match",
			Strategy:    models.StrategyDefault,
			Urgency:     sem.Urgency,
			EmotionTone: sem.EmotionTone,
		}
	}

	// Agreement: both stages picked the same responder.
	if kw.ID != "" && kw.ID == sem.ID {
		return models.Decision{
			ResponderID: kw.ID,
			Confidence:  min(agreementCap, sk+ss+agreementBonus),
			Rationale:   "agreement: " + rationale,
			Strategy:    models.StrategyHybrid,
			Urgency:     sem.Urgency,
			EmotionTone: sem.EmotionTone,
		}
	}

	// Disagreement (or a single candidate): the higher weighted score wins.
	id, conf := kw.ID, sk
	if sem.ID != "" && (kw.ID == "" || ss > sk) {
		id, conf = sem.ID, ss
	}
	return models.Decision{
		ResponderID: id,
		Confidence:  conf,
		Rationale:   rationale,
		Strategy:    models.StrategyHybrid,
		Urgency:     sem.Urgency,
		EmotionTone: sem.EmotionTone,
	}
}
