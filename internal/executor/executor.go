// Package executor implements the per-request routing pipeline:
// decision, validation, dispatch, response-quality checks, retry, the
// fallback chain, and secondary hand-off routing.
package executor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kotori-ai/kotori/internal/parallel"
	"github.com/kotori-ai/kotori/internal/promptctx"
	"github.com/kotori-ai/kotori/internal/registry"
	"github.com/kotori-ai/kotori/internal/responder"
	"github.com/kotori-ai/kotori/internal/strategy"
	"github.com/kotori-ai/kotori/pkg/models"
)

// State names the pipeline stages. States appear in routing-path steps
// and logs.
type State string

const (
	// StateDeciding is the routing-decision stage.
	StateDeciding State = "deciding"
	// StateValidating is the decision-validation stage.
	StateValidating State = "validating"
	// StateDispatching is a responder invocation.
	StateDispatching State = "dispatching"
	// StateRetrying is a repeat invocation after a rejected response.
	StateRetrying State = "retrying"
	// StateFallingBack is advancement to the next fallback responder.
	StateFallingBack State = "falling_back"
	// StateSecondaryRouting is the hand-off re-dispatch to a specialist.
	StateSecondaryRouting State = "secondary_routing"
	// StateDone terminates the pipeline.
	StateDone State = "done"
)

// DefaultRetryBudget is how many times a rejected responder is retried
// before the pipeline advances to the next fallback id.
const DefaultRetryBudget = 2

// DefaultMinResponseLength is the minimum accepted answer length in runes.
const DefaultMinResponseLength = 10

// DefaultTerminalMessage is returned when the entire fallback chain is
// exhausted. It is the only case where failure detail is suppressed.
const DefaultTerminalMessage = "申し訳ありません。現在うまく回答できませんでした。" +
	"しばらくしてからもう一度お試しください。緊急の場合は医療機関にご相談ください。"

// Config contains the executor's injected rule tables and budgets.
type Config struct {
	// RetryBudget is the per-responder retry budget. Negative means zero.
	RetryBudget int
	// MinResponseLength is the minimum accepted response length in runes.
	MinResponseLength int
	// ErrorIndicators are substrings that mark a response as malformed.
	// Nil means the built-in list.
	ErrorIndicators []string
	// FallbackChain is the fixed ordered fallback-id list walked after
	// the primary responder is exhausted. Nil means the built-in chain.
	FallbackChain []string
	// ImplausiblePairs maps responder id to keywords that make the
	// pairing implausible. Nil means the built-in table.
	ImplausiblePairs map[string][]string
	// HandoffPhrases are generalist-output phrases that trigger
	// secondary routing. Nil means the built-in list.
	HandoffPhrases []string
	// TerminalMessage overrides the exhaustion message when non-empty.
	TerminalMessage string
	// Pipelines maps pipeline name to responder ids. Nil means the
	// built-in table.
	Pipelines map[string][]string
}

// DefaultConfig returns the production executor configuration.
func DefaultConfig() Config {
	return Config{
		RetryBudget:       DefaultRetryBudget,
		MinResponseLength: DefaultMinResponseLength,
	}
}

// Options carry per-request routing overrides.
type Options struct {
	// ResponderID pins an explicit responder, skipping the decision stage.
	ResponderID string
	// Pipeline names a multi-responder pipeline, executed via the
	// parallel coordinator instead of the single-responder path.
	Pipeline string
}

// Outcome is the result of one routed request.
type Outcome struct {
	// RequestID identifies this request in logs and traces.
	RequestID string
	// ResponseText is the answer shown to the user.
	ResponseText string
	// ResponderUsed is the responder that produced the answer. Empty
	// when the fallback chain was exhausted.
	ResponderUsed string
	// Decision is the routing decision that led here, if one was made.
	Decision *models.Decision
	// Path is the routing trace of this request.
	Path models.RoutingPath
}

// Executor runs the per-request pipeline. It holds no per-request
// state; everything request-scoped lives on the stack of one call.
type Executor struct {
	registry    *registry.Registry
	router      *strategy.Router
	invoker     responder.Invoker
	builder     *promptctx.Builder
	coordinator *parallel.Coordinator
	cfg         Config

	errorIndicators []string
	fallbackChain   []string
	implausible     map[string][]string
	handoffPhrases  []string
	terminalMessage string
	pipelines       map[string][]string
}

// New creates an Executor. The coordinator may be nil, which disables
// named pipelines.
func New(reg *registry.Registry, router *strategy.Router, inv responder.Invoker, builder *promptctx.Builder, coord *parallel.Coordinator, cfg Config) *Executor {
	if cfg.RetryBudget < 0 {
		cfg.RetryBudget = 0
	}
	if cfg.MinResponseLength <= 0 {
		cfg.MinResponseLength = DefaultMinResponseLength
	}

	e := &Executor{
		registry:        reg,
		router:          router,
		invoker:         inv,
		builder:         builder,
		coordinator:     coord,
		cfg:             cfg,
		errorIndicators: cfg.ErrorIndicators,
		fallbackChain:   cfg.FallbackChain,
		implausible:     cfg.ImplausiblePairs,
		handoffPhrases:  cfg.HandoffPhrases,
		terminalMessage: cfg.TerminalMessage,
		pipelines:       cfg.Pipelines,
	}
	if e.errorIndicators == nil {
		e.errorIndicators = defaultErrorIndicators
	}
	if e.fallbackChain == nil {
		e.fallbackChain = []string{reg.DefaultID()}
	}
	if e.implausible == nil {
		e.implausible = defaultImplausiblePairs
	}
	if e.handoffPhrases == nil {
		e.handoffPhrases = defaultHandoffPhrases
	}
	if e.terminalMessage == "" {
		e.terminalMessage = DefaultTerminalMessage
	}
	if e.pipelines == nil {
		e.pipelines = defaultPipelines
	}
	return e
}

// RouteAndDispatch runs the full pipeline for one request. Input
// validation failures are the only errors it returns; every downstream
// failure is converted into response data.
func (e *Executor) RouteAndDispatch(ctx context.Context, req models.DispatchRequest, opts Options) (*Outcome, error) {
	if req.Message == "" && !req.MediaFlags.Any() {
		return nil, fmt.Errorf("route: empty message")
	}

	requestID := uuid.New().String()[:8]

	if opts.Pipeline != "" {
		return e.runPipeline(ctx, requestID, req, opts.Pipeline)
	}

	var path models.RoutingPath

	// Deciding. A pinned responder id skips the strategy.
	var decision models.Decision
	if opts.ResponderID != "" {
		if !e.registry.Has(opts.ResponderID) {
			return nil, fmt.Errorf("route: %w: %s", registry.ErrNotFound, opts.ResponderID)
		}
		decision = models.Decision{
			ResponderID: opts.ResponderID,
			Confidence:  1.0,
			Rationale:   "caller pinned responder",
			Strategy:    "pinned",
			Urgency:     models.UrgencyLow,
			EmotionTone: models.EmotionNeutral,
		}
	} else {
		decision = e.router.Decide(req)
	}
	path = path.Append(string(StateDeciding), decision.ResponderID)
	log.Printf("[executor] %s decided %s via %s (confidence %.2f)",
		requestID, decision.ResponderID, decision.Strategy, decision.Confidence)

	// Validating. An implausible pairing discards the decision in favor
	// of the default responder.
	primary := e.validateDecision(requestID, req, decision)
	path = path.Append(string(StateValidating), primary)

	// Dispatching with retry, then the fallback chain.
	accepted, result, path := e.runChain(ctx, requestID, req, primary, path)
	if !accepted {
		path = path.Append(string(StateDone), "")
		log.Printf("[executor] %s exhausted fallback chain", requestID)
		return &Outcome{
			RequestID:    requestID,
			ResponseText: e.terminalMessage,
			Decision:     &decision,
			Path:         path,
		}, nil
	}

	// Secondary routing: a generalist answer may hand off to a specialist.
	if result.ResponderID == e.registry.DefaultID() {
		if specialist, ok := e.detectHandoff(req.Message, result.ResponseText); ok {
			path = path.Append(string(StateSecondaryRouting), specialist)
			if redirected := e.dispatchWithRetry(ctx, requestID, specialist, req); redirected.Succeeded {
				log.Printf("[executor] %s hand-off to %s accepted", requestID, specialist)
				result = redirected
			} else {
				log.Printf("[executor] %s hand-off to %s rejected, keeping generalist answer", requestID, specialist)
			}
		}
	}

	path = path.Append(string(StateDone), result.ResponderID)
	return &Outcome{
		RequestID:     requestID,
		ResponseText:  result.ResponseText,
		ResponderUsed: result.ResponderID,
		Decision:      &decision,
		Path:          path,
	}, nil
}

// runChain walks the primary responder plus the fallback chain, each
// under the retry budget, stopping at first acceptance.
func (e *Executor) runChain(ctx context.Context, requestID string, req models.DispatchRequest, primary string, path models.RoutingPath) (bool, models.DispatchResult, models.RoutingPath) {
	chain := make([]string, 0, 1+len(e.fallbackChain))
	chain = append(chain, primary)
	for _, id := range e.fallbackChain {
		if id != primary {
			chain = append(chain, id)
		}
	}

	var last models.DispatchResult
	for i, id := range chain {
		if i > 0 {
			path = path.Append(string(StateFallingBack), id)
			log.Printf("[executor] %s falling back to %s", requestID, id)
		}
		path = path.Append(string(StateDispatching), id)

		result := e.dispatchWithRetry(ctx, requestID, id, req)
		if result.Succeeded {
			return true, result, path
		}
		last = result
	}
	return false, last, path
}

// dispatchWithRetry invokes one responder up to 1+RetryBudget times,
// validating each response. The returned result is the acceptance or
// the final rejection; invocation failures never escape as errors.
func (e *Executor) dispatchWithRetry(ctx context.Context, requestID, id string, req models.DispatchRequest) models.DispatchResult {
	desc, err := e.registry.Describe(id)
	if err != nil {
		return models.DispatchResult{ResponderID: id, ErrorDetail: err.Error()}
	}

	payload := e.builder.Build(desc, req, "")
	attempts := 1 + e.cfg.RetryBudget

	var lastDetail string
	var latency time.Duration
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			log.Printf("[executor] %s retrying %s (attempt %d/%d): %s",
				requestID, id, attempt, attempts, lastDetail)
		}

		start := time.Now()
		text, err := e.invoker.Invoke(ctx, id, payload)
		latency = time.Since(start)

		if err != nil {
			lastDetail = err.Error()
			if ctx.Err() != nil {
				// The request deadline is gone; further attempts
				// cannot succeed. Tag distinctly for observability.
				return models.DispatchResult{
					ResponderID: id,
					DisplayName: desc.DisplayName,
					ErrorDetail: "timeout",
					Latency:     latency,
				}
			}
			continue
		}

		if reason, ok := e.validateResponse(desc, text); !ok {
			lastDetail = reason
			continue
		}

		return models.DispatchResult{
			ResponderID:  id,
			DisplayName:  desc.DisplayName,
			ResponseText: text,
			Succeeded:    true,
			Latency:      latency,
		}
	}

	return models.DispatchResult{
		ResponderID: id,
		DisplayName: desc.DisplayName,
		ErrorDetail: lastDetail,
		Latency:     latency,
	}
}

// runPipeline executes a named multi-responder pipeline through the
// parallel coordinator.
func (e *Executor) runPipeline(ctx context.Context, requestID string, req models.DispatchRequest, name string) (*Outcome, error) {
	if e.coordinator == nil {
		return nil, fmt.Errorf("route: pipelines are not configured")
	}
	ids, ok := e.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("route: unknown pipeline %q", name)
	}

	var path models.RoutingPath
	for _, id := range ids {
		path = path.Append("pipeline:"+name, id)
	}

	resp, err := e.coordinator.Dispatch(ctx, req.Message, ids, req.UserID, req.SessionID)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		RequestID: requestID,
		Path:      path.Append(string(StateDone), ""),
	}
	if resp.OverallSucceeded {
		outcome.ResponseText = resp.MergedSummary
		outcome.ResponderUsed = joinIDs(ids)
	} else {
		outcome.ResponseText = e.terminalMessage
	}
	return outcome, nil
}

// joinIDs renders a pipeline's responder set for Outcome.ResponderUsed.
func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += "+"
		}
		out += id
	}
	return out
}
