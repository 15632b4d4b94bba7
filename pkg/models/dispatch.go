package models

import "time"

// MaxHistoryTurns bounds the conversational history carried in a request.
const MaxHistoryTurns = 10

// Turn is one exchange in the conversational history.
type Turn struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`
	// Content is the text of the turn.
	Content string `json:"content"`
}

// MediaFlags indicates attached media on a request.
type MediaFlags struct {
	// Image is true if the request carries an image attachment.
	Image bool `json:"image"`
	// Audio is true if the request carries an audio attachment.
	Audio bool `json:"audio"`
}

// Any returns true if any media flag is set.
func (f MediaFlags) Any() bool {
	return f.Image || f.Audio
}

// DispatchRequest is one user request flowing through the pipeline.
// It is read-only within the pipeline.
type DispatchRequest struct {
	// Message is the free-text request.
	Message string `json:"message"`
	// UserID identifies the requesting user.
	UserID string `json:"user_id"`
	// SessionID identifies the conversation session.
	SessionID string `json:"session_id"`
	// History is the ordered, bounded conversational context.
	History []Turn `json:"history,omitempty"`
	// ProfileContext is free-form profile information (child age, allergies, ...).
	ProfileContext string `json:"profile_context,omitempty"`
	// MediaFlags indicates attached media.
	MediaFlags MediaFlags `json:"media_flags"`
}

// BoundedHistory returns the most recent turns, capped at MaxHistoryTurns.
func (r DispatchRequest) BoundedHistory() []Turn {
	if len(r.History) <= MaxHistoryTurns {
		return r.History
	}
	return r.History[len(r.History)-MaxHistoryTurns:]
}

// DispatchResult is the outcome of invoking one responder.
type DispatchResult struct {
	// ResponderID is the responder that was invoked.
	ResponderID string `json:"responder_id"`
	// DisplayName is the responder's display name.
	DisplayName string `json:"display_name"`
	// ResponseText is the responder's answer. Empty when Succeeded is false.
	ResponseText string `json:"response_text"`
	// Succeeded indicates whether the invocation produced an accepted answer.
	Succeeded bool `json:"succeeded"`
	// ErrorDetail describes the failure when Succeeded is false.
	ErrorDetail string `json:"error_detail,omitempty"`
	// Latency is how long the invocation took.
	Latency time.Duration `json:"latency"`
}

// ParallelResponse aggregates the results of a multi-responder fan-out.
type ParallelResponse struct {
	// Results holds one entry per requested responder, settled or timed out.
	Results []DispatchResult `json:"results"`
	// Responses maps responder id to response text for successful results only.
	Responses map[string]string `json:"responses"`
	// MergedSummary is the synthesized composite answer.
	// It is set only if at least one result succeeded.
	MergedSummary string `json:"merged_summary,omitempty"`
	// OverallSucceeded is true if at least one result succeeded.
	OverallSucceeded bool `json:"overall_succeeded"`
}

// RoutingStep is one entry in a request's routing trace.
type RoutingStep struct {
	// Step names the pipeline stage that produced this entry.
	Step string `json:"step"`
	// ResponderID is the responder involved, if any.
	ResponderID string `json:"responder_id,omitempty"`
	// At is when the step occurred.
	At time.Time `json:"at"`
}

// RoutingPath is the append-only ordered trace of one request's lifecycle.
// It is request-scoped and not persisted by this core.
type RoutingPath []RoutingStep

// Append returns the path with one more step recorded at the current time.
func (p RoutingPath) Append(step, responderID string) RoutingPath {
	return append(p, RoutingStep{Step: step, ResponderID: responderID, At: time.Now()})
}
