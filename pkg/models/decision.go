// Package models defines the shared data model for the kotori routing core.
package models

// Urgency represents how urgently a request should be handled.
type Urgency string

const (
	// UrgencyLow indicates a routine consultation.
	UrgencyLow Urgency = "low"
	// UrgencyMedium indicates a concern that deserves prompt attention.
	UrgencyMedium Urgency = "medium"
	// UrgencyHigh indicates a potential emergency.
	UrgencyHigh Urgency = "high"
)

// Valid returns true if the urgency is a known value.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	default:
		return false
	}
}

// EmotionTone is the emotional tone derived from lexical cues in a request.
type EmotionTone string

const (
	// EmotionNeutral is the default tone when no cue matches.
	EmotionNeutral EmotionTone = "neutral"
	// EmotionAnxious indicates worry or fear cues.
	EmotionAnxious EmotionTone = "anxious"
	// EmotionTired indicates exhaustion cues.
	EmotionTired EmotionTone = "tired"
	// EmotionFrustrated indicates irritation cues.
	EmotionFrustrated EmotionTone = "frustrated"
	// EmotionPositive indicates upbeat cues.
	EmotionPositive EmotionTone = "positive"
)

// Decision identifies which responder should handle a request.
// A decision is created once per request and never mutated.
type Decision struct {
	// ResponderID is the selected responder.
	ResponderID string `json:"responder_id"`
	// Confidence is how confident the selection is (0.0-1.0).
	Confidence float64 `json:"confidence"`
	// Rationale explains why this responder was selected.
	Rationale string `json:"rationale"`
	// Strategy names the stage that produced the decision.
	Strategy string `json:"strategy"`
	// Urgency is the derived urgency of the request.
	Urgency Urgency `json:"urgency"`
	// EmotionTone is the derived emotional tone of the request.
	EmotionTone EmotionTone `json:"emotion_tone"`
}

// Strategy names for Decision.Strategy.
const (
	// StrategyMediaOverride is used when a media flag forces the media responder.
	StrategyMediaOverride = "media_override"
	// StrategyExplicitIntent is used when a directive token forces a responder.
	StrategyExplicitIntent = "explicit_intent"
	// StrategyEmergencyOverride is used when an emergency keyword forces the safety responder.
	StrategyEmergencyOverride = "emergency_override"
	// StrategyHybrid is used when keyword and semantic scores were fused.
	StrategyHybrid = "hybrid"
	// StrategyDefault is used when no stage produced a candidate.
	StrategyDefault = "default"
)
