package executor

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/kotori-ai/kotori/pkg/models"
)

// defaultErrorIndicators mark a response as malformed regardless of length.
var defaultErrorIndicators = []string{
	"エラーが発生しました",
	"お答えできません",
	"internal error",
	"error:",
	"exception",
	"failed to",
}

// defaultImplausiblePairs maps responder ids to keywords that make the
// pairing implausible. A hit discards the routing decision in favor of
// the default responder; this guards against keyword/semantic
// disagreement producing a confidently wrong route.
var defaultImplausiblePairs = map[string][]string{
	"play":      {"発熱", "けいれん", "誤飲", "病気"},
	"behavior":  {"発熱", "けいれん", "誤飲"},
	"nutrition": {"けいれん", "意識がない"},
	"search":    {"けいれん", "意識がない"},
}

// defaultHandoffPhrases in a generalist answer indicate a specialist
// should take over.
var defaultHandoffPhrases = []string{
	"専門の相談員",
	"専門家にご相談",
	"専門の窓口",
	"担当分野外",
	"専門的な回答が必要",
}

// defaultPipelines are the named multi-responder pipelines.
var defaultPipelines = map[string][]string{
	"care_team": {"nutrition", "sleep", "development"},
	"wellbeing": {"health", "sleep"},
}

// validateDecision applies the implausible-pairing rule table and
// registry resolution to a decision, returning the responder id to
// dispatch.
func (e *Executor) validateDecision(requestID string, req models.DispatchRequest, decision models.Decision) string {
	id := e.registry.Resolve(decision.ResponderID)

	lower := strings.ToLower(req.Message)
	for _, kw := range e.implausible[id] {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			log.Printf("[executor] %s implausible pairing %s/%q, using default responder", requestID, id, kw)
			return e.registry.DefaultID()
		}
	}
	return id
}

// validateResponse accepts a response only if it meets the minimum
// length, contains a domain keyword for responders with a domain
// contract, and carries no error-indicator substring. It returns the
// rejection reason when not ok.
func (e *Executor) validateResponse(desc models.Descriptor, text string) (string, bool) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < e.cfg.MinResponseLength {
		return "response too short", false
	}

	lower := strings.ToLower(text)
	for _, indicator := range e.errorIndicators {
		if strings.Contains(lower, strings.ToLower(indicator)) {
			return "error indicator present: " + indicator, false
		}
	}

	if desc.HasDomainContract() {
		found := false
		for _, kw := range desc.ForcedKeywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return "missing domain keyword", false
		}
	}

	return "", true
}

// detectHandoff decides whether a generalist answer should be replaced
// by a specialist's. It re-checks the original message against
// specialist keyword sets; the best-matching specialist is chosen when
// the answer contains a hand-off phrase, or when the keyword evidence
// alone is strong.
func (e *Executor) detectHandoff(message, answer string) (string, bool) {
	lower := strings.ToLower(message)

	bestID := ""
	bestMatches := 0
	for _, d := range e.registry.All() {
		if d.Category != models.CategorySpecialist {
			continue
		}
		matches := 0
		for _, kw := range d.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				matches++
			}
		}
		// Strict comparison keeps the earlier-registered specialist on ties.
		if matches > bestMatches {
			bestMatches = matches
			bestID = d.ID
		}
	}
	if bestMatches == 0 {
		return "", false
	}

	answerLower := strings.ToLower(answer)
	for _, phrase := range e.handoffPhrases {
		if strings.Contains(answerLower, strings.ToLower(phrase)) {
			return bestID, true
		}
	}

	// Two or more matched keywords is strong enough evidence on its own.
	if bestMatches >= 2 {
		return bestID, true
	}
	return "", false
}
