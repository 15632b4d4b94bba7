package parallel

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kotori-ai/kotori/internal/promptctx"
	"github.com/kotori-ai/kotori/internal/registry"
	"github.com/kotori-ai/kotori/internal/responder"
)

func newTestCoordinator(t *testing.T, mux *responder.Mux, cfg Config) *Coordinator {
	t.Helper()
	return NewCoordinator(registry.NewDefault(), mux, promptctx.NewBuilder(), cfg)
}

func TestDispatch_Validation(t *testing.T) {
	var invocations int32
	mux := responder.NewMux()
	for _, id := range []string{"nutrition", "sleep", "development", "play"} {
		id := id
		mux.Register(responder.NewFuncResponder(id, func(ctx context.Context, _ promptctx.Payload) (string, error) {
			atomic.AddInt32(&invocations, 1)
			return "ok", nil
		}))
	}
	c := newTestCoordinator(t, mux, Config{})

	tests := []struct {
		name    string
		message string
		ids     []string
	}{
		{"empty message", "", []string{"sleep"}},
		{"no ids", "question", nil},
		{"too many ids", "question", []string{"nutrition", "sleep", "development", "play"}},
		{"unknown id", "question", []string{"sleep", "astrology"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Dispatch(context.Background(), tt.message, tt.ids, "u1", "s1")
			if err == nil {
				t.Fatalf("Dispatch should fail validation")
			}
		})
	}

	// Fail-fast means no task ever launched.
	if n := atomic.LoadInt32(&invocations); n != 0 {
		t.Errorf("validation failures launched %d tasks, want 0", n)
	}
}

func TestDispatch_PartialFailure(t *testing.T) {
	// 3 responders: 1 fails immediately, 2 succeed.
	mux := responder.NewMux()
	mux.Register(responder.NewStaticResponder("nutrition", "鉄分を意識した食事をすすめます。"))
	mux.Register(responder.NewFailingResponder("sleep", errors.New("backend exploded")))
	mux.Register(responder.NewStaticResponder("development", "月齢相応の発達に見えます。"))
	c := newTestCoordinator(t, mux, Config{})

	resp, err := c.Dispatch(context.Background(), "夜泣きと食事について", []string{"nutrition", "sleep", "development"}, "u1", "s1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if !resp.OverallSucceeded {
		t.Errorf("OverallSucceeded = false, want true")
	}
	if len(resp.Results) != 3 {
		t.Errorf("Results length = %d, want 3", len(resp.Results))
	}
	if len(resp.Responses) != 2 {
		t.Errorf("Responses length = %d, want 2", len(resp.Responses))
	}

	for _, res := range resp.Results {
		if res.ResponderID == "sleep" {
			if res.Succeeded {
				t.Errorf("failed responder marked succeeded")
			}
			if res.ResponseText != "" {
				t.Errorf("failed responder carries response text: %q", res.ResponseText)
			}
			if !strings.Contains(res.ErrorDetail, "backend exploded") {
				t.Errorf("ErrorDetail = %q", res.ErrorDetail)
			}
		}
	}

	if resp.MergedSummary == "" {
		t.Errorf("MergedSummary should be set when at least one result succeeded")
	}
}

func TestDispatch_AllFail_NoMergedSummary(t *testing.T) {
	mux := responder.NewMux()
	mux.Register(responder.NewFailingResponder("nutrition", errors.New("down")))
	mux.Register(responder.NewFailingResponder("sleep", errors.New("down")))
	c := newTestCoordinator(t, mux, Config{})

	resp, err := c.Dispatch(context.Background(), "相談です", []string{"nutrition", "sleep"}, "u1", "s1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.OverallSucceeded {
		t.Errorf("OverallSucceeded = true, want false")
	}
	if resp.MergedSummary != "" {
		t.Errorf("MergedSummary = %q, want empty when nothing succeeded", resp.MergedSummary)
	}
}

func TestDispatch_TimeoutMarksPendingFailed(t *testing.T) {
	mux := responder.NewMux()
	mux.Register(responder.NewStaticResponder("nutrition", "すぐ返せる回答です。"))
	hung := make(chan struct{})
	mux.Register(responder.NewFuncResponder("sleep", func(ctx context.Context, _ promptctx.Payload) (string, error) {
		// Simulates a hung call: never returns until the test ends.
		<-hung
		return "", nil
	}))
	t.Cleanup(func() { close(hung) })
	c := newTestCoordinator(t, mux, Config{Timeout: 150 * time.Millisecond})

	start := time.Now()
	resp, err := c.Dispatch(context.Background(), "急ぎの相談", []string{"nutrition", "sleep"}, "u1", "s1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Dispatch did not return near the deadline: took %s", elapsed)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("Results length = %d, want 2", len(resp.Results))
	}
	slowIdx, fastIdx := -1, -1
	for i := range resp.Results {
		switch resp.Results[i].ResponderID {
		case "sleep":
			slowIdx = i
		case "nutrition":
			fastIdx = i
		}
	}
	if slowIdx < 0 || fastIdx < 0 {
		t.Fatalf("missing per-id results: %+v", resp.Results)
	}
	if resp.Results[slowIdx].Succeeded {
		t.Errorf("timed-out task marked succeeded")
	}
	if resp.Results[slowIdx].ErrorDetail != "timeout" {
		t.Errorf("ErrorDetail = %q, want timeout tag", resp.Results[slowIdx].ErrorDetail)
	}
	if !resp.Results[fastIdx].Succeeded {
		t.Errorf("sibling result lost on timeout: %+v", resp.Results[fastIdx])
	}
	if !resp.OverallSucceeded {
		t.Errorf("OverallSucceeded = false, want true")
	}
}

func TestDispatch_SpecializesMessagePerResponder(t *testing.T) {
	var captured atomic.Value
	mux := responder.NewMux()
	mux.Register(responder.NewFuncResponder("nutrition", func(ctx context.Context, p promptctx.Payload) (string, error) {
		captured.Store(p.Message)
		return "ok", nil
	}))
	c := newTestCoordinator(t, mux, Config{})

	if _, err := c.Dispatch(context.Background(), "食事の相談", []string{"nutrition"}, "u1", "s1"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	msg, _ := captured.Load().(string)
	if !strings.Contains(msg, "食事の相談") {
		t.Errorf("specialized message lost the original question: %q", msg)
	}
	if !strings.Contains(msg, "栄養相談") || !strings.Contains(msg, "回答範囲") {
		t.Errorf("specialized message missing domain scoping: %q", msg)
	}
}
