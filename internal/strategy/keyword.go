package strategy

import "strings"

// keywordScore is the outcome of the keyword scoring stage.
type keywordScore struct {
	// ID is the winning responder, empty when nothing matched.
	ID string
	// Confidence is min(0.8, 2*score).
	Confidence float64
	// Matched is how many keywords matched for the winner.
	Matched int
}

// keywordConfidenceCap caps keyword-stage confidence.
const keywordConfidenceCap = 0.8

// scoreKeywords scores every registered responder against the
// lowercased message: score = |matched keywords| / |keyword set|, scaled
// by the responder's configured domain boost. The highest score wins;
// ties are broken by registration order. A forced-keyword hit wins the
// stage outright with a full score.
func (r *Router) scoreKeywords(lower string) keywordScore {
	var best keywordScore
	var bestScore float64

	for _, d := range r.registry.All() {
		// Forced keywords short-circuit the ratio score.
		for _, kw := range d.ForcedKeywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return keywordScore{
					ID:         d.ID,
					Confidence: keywordConfidenceCap,
					Matched:    len(d.ForcedKeywords),
				}
			}
		}

		if len(d.Keywords) == 0 {
			continue
		}

		matched := 0
		for _, kw := range d.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}

		score := float64(matched) / float64(len(d.Keywords))
		if d.PriorityWeight > 0 {
			score *= d.PriorityWeight
		}
		if boost, ok := r.cfg.DomainBoosts[d.ID]; ok && boost > 0 {
			score *= boost
		}

		// Strict comparison keeps the earlier-registered responder on ties.
		if score > bestScore {
			bestScore = score
			best = keywordScore{
				ID:         d.ID,
				Confidence: min(keywordConfidenceCap, 2*score),
				Matched:    matched,
			}
		}
	}

	return best
}

// min returns the smaller of two float64 values.
func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
