package parallel

import (
	"context"
	"fmt"
	"strings"

	"github.com/kotori-ai/kotori/internal/promptctx"
	"github.com/kotori-ai/kotori/internal/responder"
)

// synthesisSystemPrompt frames the merge request for the backing model.
const synthesisSystemPrompt = "あなたは子育て相談チームのまとめ役です。" +
	"複数の専門相談員の回答を、矛盾なく一つの分かりやすい回答に統合してください。" +
	"各専門分野の要点を残しつつ、重複は省いてください。"

// InvokerSynthesizer produces the merged summary through a responder
// implementation, typically the generalist. Errors propagate so the
// coordinator can fall back to the deterministic merge.
type InvokerSynthesizer struct {
	invoker     responder.Invoker
	responderID string
}

// NewInvokerSynthesizer creates a synthesizer that dispatches merge
// requests to the responder registered under responderID.
func NewInvokerSynthesizer(inv responder.Invoker, responderID string) *InvokerSynthesizer {
	return &InvokerSynthesizer{invoker: inv, responderID: responderID}
}

// Synthesize asks the backing responder to merge the summaries.
func (s *InvokerSynthesizer) Synthesize(ctx context.Context, question string, parts []SummaryPart) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "相談内容: %s\n\n各専門相談員の回答:\n", question)
	for _, p := range parts {
		fmt.Fprintf(&b, "\n【%s】\n%s\n", p.DisplayName, p.Summary)
	}
	b.WriteString("\n上記を一つの回答に統合してください。")

	return s.invoker.Invoke(ctx, s.responderID, promptctx.Payload{
		System:  synthesisSystemPrompt,
		Message: b.String(),
	})
}
