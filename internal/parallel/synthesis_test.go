package parallel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kotori-ai/kotori/internal/promptctx"
	"github.com/kotori-ai/kotori/internal/registry"
	"github.com/kotori-ai/kotori/internal/responder"
	"github.com/kotori-ai/kotori/pkg/models"
)

func TestSummarize_ExtractsBullets(t *testing.T) {
	text := "前置きの文章です。\n- 水分をこまめに\n・室温を調整\n続きの文章。\n1. 様子を観察"

	got := summarize(text, 300)
	want := "- 水分をこまめに\n・室温を調整\n1. 様子を観察"
	if got != want {
		t.Errorf("summarize() = %q, want %q", got, want)
	}
}

func TestSummarize_HeadTruncatesWithoutStructure(t *testing.T) {
	text := strings.Repeat("あ", 50)

	got := summarize(text, 10)
	if !strings.HasPrefix(got, strings.Repeat("あ", 10)) {
		t.Errorf("summarize() should head-truncate: %q", got)
	}
	if len([]rune(got)) > 11 {
		t.Errorf("summarize() exceeded limit: %d runes", len([]rune(got)))
	}
}

func TestTruncateRunes_MultibyteSafe(t *testing.T) {
	got := truncateRunes("子育て相談", 3)
	if got != "子育て…" {
		t.Errorf("truncateRunes() = %q, want 子育て…", got)
	}
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("truncateRunes() should not modify short strings: %q", got)
	}
}

func TestMergeParts_Deterministic(t *testing.T) {
	parts := []SummaryPart{
		{ResponderID: "nutrition", DisplayName: "栄養相談", Summary: "鉄分を増やす"},
		{ResponderID: "sleep", DisplayName: "睡眠相談", Summary: "就寝時刻を固定"},
	}

	first := mergeParts(parts)
	second := mergeParts(parts)
	if first != second {
		t.Errorf("mergeParts is not deterministic")
	}
	if !strings.Contains(first, "【栄養相談】") || !strings.Contains(first, "【睡眠相談】") {
		t.Errorf("merge missing sections: %q", first)
	}
	if strings.Index(first, "栄養相談") > strings.Index(first, "睡眠相談") {
		t.Errorf("merge lost task order: %q", first)
	}
}

// failingSynthesizer always errors, forcing the deterministic fallback.
type failingSynthesizer struct{}

func (failingSynthesizer) Synthesize(_ context.Context, _ string, _ []SummaryPart) (string, error) {
	return "", errors.New("synthesis backend down")
}

func TestSynthesize_FallsBackOnFailure(t *testing.T) {
	// Synthesis failure must never drop prior work: the deterministic
	// concatenation of the same summaries takes over.
	mux := responder.NewMux()
	mux.Register(responder.NewStaticResponder("nutrition", "- 鉄分を増やす"))
	c := NewCoordinator(registry.NewDefault(), mux, promptctx.NewBuilder(), Config{Synthesizer: failingSynthesizer{}})

	resp, err := c.Dispatch(context.Background(), "食事の相談", []string{"nutrition"}, "u1", "s1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !strings.Contains(resp.MergedSummary, "鉄分を増やす") {
		t.Errorf("fallback merge lost responder content: %q", resp.MergedSummary)
	}
}

// recordingSynthesizer returns a fixed composite and captures its input.
type recordingSynthesizer struct {
	parts []SummaryPart
}

func (s *recordingSynthesizer) Synthesize(_ context.Context, _ string, parts []SummaryPart) (string, error) {
	s.parts = parts
	return "合成された回答", nil
}

func TestSynthesize_UsesConfiguredSynthesizer(t *testing.T) {
	mux := responder.NewMux()
	mux.Register(responder.NewStaticResponder("nutrition", "回答A"))
	mux.Register(responder.NewStaticResponder("sleep", "回答B"))
	syn := &recordingSynthesizer{}
	c := NewCoordinator(registry.NewDefault(), mux, promptctx.NewBuilder(), Config{Synthesizer: syn})

	resp, err := c.Dispatch(context.Background(), "相談", []string{"nutrition", "sleep"}, "u1", "s1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.MergedSummary != "合成された回答" {
		t.Errorf("MergedSummary = %q", resp.MergedSummary)
	}
	if len(syn.parts) != 2 {
		t.Errorf("synthesizer received %d parts, want 2", len(syn.parts))
	}
}

func TestSynthesize_OnlySuccessesContribute(t *testing.T) {
	results := []models.DispatchResult{
		{ResponderID: "a", DisplayName: "A", ResponseText: "- ok", Succeeded: true},
		{ResponderID: "b", DisplayName: "B", ErrorDetail: "down"},
	}
	mux := responder.NewMux()
	c := NewCoordinator(registry.NewDefault(), mux, promptctx.NewBuilder(), Config{})

	merged := c.synthesize(context.Background(), "q", results)
	if !strings.Contains(merged, "【A】") {
		t.Errorf("merge missing successful responder: %q", merged)
	}
	if strings.Contains(merged, "【B】") {
		t.Errorf("failed responder leaked into merge: %q", merged)
	}
}
