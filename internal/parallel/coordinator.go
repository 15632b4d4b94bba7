// Package parallel implements the fan-out/fan-in coordinator: one
// request dispatched to several responders concurrently under a single
// deadline, with partial-failure tolerance and result synthesis.
package parallel

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kotori-ai/kotori/internal/promptctx"
	"github.com/kotori-ai/kotori/internal/registry"
	"github.com/kotori-ai/kotori/internal/responder"
	"github.com/kotori-ai/kotori/pkg/models"
)

// DefaultMaxResponders is the fan-out width limit.
const DefaultMaxResponders = 3

// DefaultTimeout is the single deadline governing the whole fan-out.
const DefaultTimeout = 15 * time.Second

// Config contains configuration options for the Coordinator.
type Config struct {
	// MaxResponders caps how many responders one dispatch may fan out to.
	// Zero means DefaultMaxResponders.
	MaxResponders int
	// Timeout is the fan-out-wide deadline. Zero means DefaultTimeout.
	Timeout time.Duration
	// Synthesizer merges successful results into one composite answer.
	// Nil disables LLM-backed synthesis; the deterministic merge is used.
	Synthesizer Synthesizer
}

// Coordinator fans a request out to several responders and aggregates
// the settled results.
type Coordinator struct {
	registry *registry.Registry
	invoker  responder.Invoker
	builder  *promptctx.Builder
	cfg      Config
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(reg *registry.Registry, inv responder.Invoker, builder *promptctx.Builder, cfg Config) *Coordinator {
	if cfg.MaxResponders <= 0 {
		cfg.MaxResponders = DefaultMaxResponders
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Coordinator{
		registry: reg,
		invoker:  inv,
		builder:  builder,
		cfg:      cfg,
	}
}

// settled carries one task's result back to the collector.
type settled struct {
	idx    int
	result models.DispatchResult
}

// Dispatch fans message out to the given responder ids. Validation
// failures return an error before any task launches; from then on every
// failure is represented as result data, never a raised error.
func (c *Coordinator) Dispatch(ctx context.Context, message string, ids []string, userID, sessionID string) (*models.ParallelResponse, error) {
	if err := c.validate(message, ids); err != nil {
		return nil, err
	}

	req := models.DispatchRequest{
		Message:   message,
		UserID:    userID,
		SessionID: sessionID,
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ch := make(chan settled, len(ids))
	for i, id := range ids {
		go func(i int, id string) {
			ch <- settled{idx: i, result: c.invokeOne(ctx, id, req)}
		}(i, id)
	}

	// Collect until every task has settled or the fan-out deadline hits.
	// Aggregation never happens on first completion.
	results := make([]models.DispatchResult, len(ids))
	done := make([]bool, len(ids))
	pending := len(ids)
	for pending > 0 {
		select {
		case s := <-ch:
			results[s.idx] = s.result
			done[s.idx] = true
			pending--
		case <-ctx.Done():
			// Still-pending tasks are recorded as timed out. Their
			// goroutines see the cancelled context and stop waiting,
			// but forced termination of a hung call is not guaranteed.
			for i := range ids {
				if !done[i] {
					results[i] = c.timeoutResult(ids[i])
					done[i] = true
					pending--
				}
			}
		}
	}

	return c.aggregate(ctx, message, ids, results), nil
}

// validate fails fast on malformed input with no partial side effects.
func (c *Coordinator) validate(message string, ids []string) error {
	if message == "" {
		return fmt.Errorf("parallel dispatch: empty message")
	}
	if len(ids) == 0 {
		return fmt.Errorf("parallel dispatch: no responder ids")
	}
	if len(ids) > c.cfg.MaxResponders {
		return fmt.Errorf("parallel dispatch: %d responders requested, max is %d", len(ids), c.cfg.MaxResponders)
	}
	for _, id := range ids {
		if !c.registry.Has(id) {
			return fmt.Errorf("parallel dispatch: %w: %s", registry.ErrNotFound, id)
		}
	}
	return nil
}

// invokeOne runs a single responder task. All invocation failures are
// converted into a failed DispatchResult for this id only.
func (c *Coordinator) invokeOne(ctx context.Context, id string, req models.DispatchRequest) models.DispatchResult {
	desc, err := c.registry.Describe(id)
	if err != nil {
		// Ids were validated before launch; a miss here means the
		// catalog changed mid-flight. Record it as a failure.
		return models.DispatchResult{ResponderID: id, ErrorDetail: err.Error()}
	}

	payload := c.builder.Build(desc, req, specialize(req.Message, desc))

	start := time.Now()
	text, err := c.invoker.Invoke(ctx, id, payload)
	latency := time.Since(start)

	if err != nil {
		log.Printf("[parallel] responder %s failed after %s: %v", id, latency, err)
		return models.DispatchResult{
			ResponderID: id,
			DisplayName: desc.DisplayName,
			ErrorDetail: err.Error(),
			Latency:     latency,
		}
	}

	return models.DispatchResult{
		ResponderID:  id,
		DisplayName:  desc.DisplayName,
		ResponseText: text,
		Succeeded:    true,
		Latency:      latency,
	}
}

// timeoutResult records a task that did not settle before the deadline.
// The distinct tag lets timeouts be told apart from invocation failures.
func (c *Coordinator) timeoutResult(id string) models.DispatchResult {
	name := id
	if desc, err := c.registry.Describe(id); err == nil {
		name = desc.DisplayName
	}
	return models.DispatchResult{
		ResponderID: id,
		DisplayName: name,
		ErrorDetail: "timeout",
		Latency:     c.cfg.Timeout,
	}
}

// specialize augments the message with a domain-scoping instruction so
// several specialists seeing the same question stay within their own
// domains.
func specialize(message string, desc models.Descriptor) string {
	if desc.DisplayName == "" {
		return message
	}
	return fmt.Sprintf("%s\n\n【回答範囲】「%s」の専門分野の範囲内でのみ回答してください。", message, desc.DisplayName)
}

// aggregate builds the ParallelResponse from settled results and runs
// synthesis over the successes.
func (c *Coordinator) aggregate(ctx context.Context, message string, ids []string, results []models.DispatchResult) *models.ParallelResponse {
	resp := &models.ParallelResponse{
		Results:   results,
		Responses: make(map[string]string),
	}
	for _, res := range results {
		if res.Succeeded {
			resp.Responses[res.ResponderID] = res.ResponseText
			resp.OverallSucceeded = true
		}
	}

	if resp.OverallSucceeded {
		resp.MergedSummary = c.synthesize(ctx, message, results)
	}

	log.Printf("[parallel] dispatch settled: %d/%d succeeded", len(resp.Responses), len(ids))
	return resp
}
