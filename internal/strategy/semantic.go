package strategy

import (
	"strings"

	"github.com/kotori-ai/kotori/pkg/models"
)

// semanticScore is the outcome of the semantic classification stage.
type semanticScore struct {
	// ID is the candidate responder, empty when no bucket matched.
	ID string
	// Confidence is the bucket's fixed confidence.
	Confidence float64
	// Urgency and EmotionTone are derived from the matched bucket.
	Urgency     models.Urgency
	EmotionTone models.EmotionTone
}

// cueBucket is one fixed lexical-cue bucket of the semantic classifier.
type cueBucket struct {
	name        string
	cues        []string
	responderID string
	confidence  float64
	urgency     models.Urgency
	emotion     models.EmotionTone
}

// cueBuckets are checked in order; the first bucket with a matching cue
// wins. Order matters: illness cues come first because health concerns
// dominate mixed messages.
var cueBuckets = []cueBucket{
	{
		name:        "illness",
		cues:        []string{"体調が悪", "具合が悪", "病気かも", "元気がない", "食欲がない"},
		responderID: "health",
		confidence:  0.65,
		urgency:     models.UrgencyMedium,
		emotion:     models.EmotionAnxious,
	},
	{
		name:        "sleep_trouble",
		cues:        []string{"眠れない", "寝てくれない", "夜中に何度も", "寝不足", "眠そう"},
		responderID: "sleep",
		confidence:  0.6,
		urgency:     models.UrgencyMedium,
		emotion:     models.EmotionTired,
	},
	{
		name:        "feeding",
		cues:        []string{"食べてくれない", "飲まない", "ご飯を残す", "偏食"},
		responderID: "nutrition",
		confidence:  0.6,
		urgency:     models.UrgencyLow,
		emotion:     models.EmotionNeutral,
	},
	{
		name:        "development_worry",
		cues:        []string{"言葉が遅い", "まだ歩かない", "周りの子と比べ", "遅れている"},
		responderID: "development",
		confidence:  0.55,
		urgency:     models.UrgencyMedium,
		emotion:     models.EmotionAnxious,
	},
	{
		name:        "discipline",
		cues:        []string{"言うことを聞かない", "怒ってばかり", "イライラ", "叩いてしまい"},
		responderID: "behavior",
		confidence:  0.55,
		urgency:     models.UrgencyMedium,
		emotion:     models.EmotionFrustrated,
	},
	{
		name:        "play_ideas",
		cues:        []string{"暇そう", "退屈", "何して遊", "楽しい"},
		responderID: "play",
		confidence:  0.5,
		urgency:     models.UrgencyLow,
		emotion:     models.EmotionPositive,
	},
	{
		name:        "anxiety",
		cues:        []string{"心配", "不安", "怖い", "大丈夫でしょうか", "worried"},
		responderID: "general",
		confidence:  0.45,
		urgency:     models.UrgencyMedium,
		emotion:     models.EmotionAnxious,
	},
}

// classify runs the independent semantic classifier over the lowercased
// message. With no matching bucket it returns no candidate with neutral
// tone and low urgency.
func (r *Router) classify(lower string) semanticScore {
	for _, b := range cueBuckets {
		for _, cue := range b.cues {
			if strings.Contains(lower, strings.ToLower(cue)) {
				return semanticScore{
					ID:          b.responderID,
					Confidence:  b.confidence,
					Urgency:     b.urgency,
					EmotionTone: b.emotion,
				}
			}
		}
	}
	return semanticScore{
		Urgency:     models.UrgencyLow,
		EmotionTone: models.EmotionNeutral,
	}
}
