// Package strategy implements the routing decision procedure: a
// priority-ordered chain of overrides followed by hybrid keyword and
// semantic scoring.
package strategy

import (
	"log"
	"strings"

	"github.com/kotori-ai/kotori/internal/registry"
	"github.com/kotori-ai/kotori/pkg/models"
)

// Config holds the tunable parameters for routing decisions.
// All tables are injected at construction so tests can supply
// alternate configurations.
type Config struct {
	// KeywordWeight is Wk in hybrid fusion.
	KeywordWeight float64
	// SemanticWeight is Ws in hybrid fusion.
	SemanticWeight float64
	// DomainBoosts multiplies the keyword score for specific responder ids.
	// A responder not present in the map uses a multiplier of 1.0.
	DomainBoosts map[string]float64
	// DefaultConfidence is the confidence assigned when no stage matches.
	DefaultConfidence float64
	// EmergencyKeywords overrides the built-in emergency list when non-nil.
	EmergencyKeywords []string
	// DirectiveTokens overrides the built-in explicit-intent table when non-nil.
	DirectiveTokens map[string]string
}

// DefaultConfig returns the production routing configuration.
func DefaultConfig() Config {
	return Config{
		KeywordWeight:     0.6,
		SemanticWeight:    0.5,
		DefaultConfidence: 0.35,
	}
}

// Router produces routing decisions. It is state-free per request: the
// same message and context always produce the same decision.
type Router struct {
	registry  *registry.Registry
	cfg       Config
	emergency []string
	directive map[string]string
}

// NewRouter creates a Router over the given registry.
func NewRouter(reg *registry.Registry, cfg Config) *Router {
	emergency := cfg.EmergencyKeywords
	if emergency == nil {
		emergency = defaultEmergencyKeywords
	}
	directive := cfg.DirectiveTokens
	if directive == nil {
		directive = defaultDirectiveTokens
	}
	return &Router{
		registry:  reg,
		cfg:       cfg,
		emergency: emergency,
		directive: directive,
	}
}

// Decide selects a responder for the request. The stages run in priority
// order; the first override that fires wins outright, otherwise keyword
// and semantic scores are fused.
func (r *Router) Decide(req models.DispatchRequest) models.Decision {
	// Stage 1: media override. Any attachment goes to the media
	// responder before any text analysis.
	if req.MediaFlags.Any() {
		return models.Decision{
			ResponderID: r.registry.Resolve(registry.IDMedia),
			Confidence:  1.0,
			Rationale:   "media attachment present",
			Strategy:    models.StrategyMediaOverride,
			Urgency:     models.UrgencyLow,
			EmotionTone: models.EmotionNeutral,
		}
	}

	lower := strings.ToLower(req.Message)

	// Stage 2: explicit-intent override.
	if id, token, ok := r.matchDirective(lower); ok {
		return models.Decision{
			ResponderID: r.registry.Resolve(id),
			Confidence:  1.0,
			Rationale:   "explicit directive " + token,
			Strategy:    models.StrategyExplicitIntent,
			Urgency:     models.UrgencyLow,
			EmotionTone: models.EmotionNeutral,
		}
	}

	// Stage 3: emergency override. This scan is O(k) over a small fixed
	// list and must run before the heavier scoring stages so urgent
	// requests are routed with minimal latency.
	if kw, ok := r.matchEmergency(lower); ok {
		log.Printf("[strategy] emergency keyword %q matched", kw)
		return models.Decision{
			ResponderID: r.registry.Resolve(registry.IDHealth),
			Confidence:  1.0,
			Rationale:   "emergency keyword " + kw,
			Strategy:    models.StrategyEmergencyOverride,
			Urgency:     models.UrgencyHigh,
			EmotionTone: models.EmotionAnxious,
		}
	}

	// Stages 4-6: keyword scoring, semantic scoring, hybrid fusion.
	kw := r.scoreKeywords(lower)
	sem := r.classify(lower)
	return r.fuse(kw, sem)
}
