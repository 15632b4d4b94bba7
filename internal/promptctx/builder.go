// Package promptctx assembles the payload handed to a responder from a
// dispatch request. The executor and coordinator are agnostic to the
// payload format; only responder implementations interpret it.
package promptctx

import (
	"fmt"
	"strings"

	"github.com/kotori-ai/kotori/pkg/models"
)

// Payload is the assembled input for one responder invocation.
type Payload struct {
	// System is the responder's system prompt.
	System string
	// History is the bounded conversational context, oldest first.
	History []models.Turn
	// Message is the user message, possibly specialized by the caller.
	Message string
}

// Builder assembles payloads. The base prompt frames every responder;
// per-responder framing comes from the descriptor.
type Builder struct {
	basePrompt string
}

// defaultBasePrompt frames every responder as a childcare consultation
// assistant answering in the user's language.
const defaultBasePrompt = "あなたは子育て相談アシスタント「コトリ」の担当者です。" +
	"保護者からの相談に、簡潔で実践的な日本語で回答してください。" +
	"診断や断定は避け、必要に応じて受診をすすめてください。"

// NewBuilder creates a Builder with the default base prompt.
func NewBuilder() *Builder {
	return &Builder{basePrompt: defaultBasePrompt}
}

// NewBuilderWithPrompt creates a Builder with a custom base prompt.
func NewBuilderWithPrompt(base string) *Builder {
	return &Builder{basePrompt: base}
}

// Build assembles the payload for one responder. The message parameter
// allows callers to pass a specialized variant of the request message;
// when empty, the request's own message is used.
func (b *Builder) Build(desc models.Descriptor, req models.DispatchRequest, message string) Payload {
	if message == "" {
		message = req.Message
	}

	var sys strings.Builder
	sys.WriteString(b.basePrompt)
	if desc.DisplayName != "" {
		fmt.Fprintf(&sys, "\n\nあなたの担当分野は「%s」です。", desc.DisplayName)
	}
	if desc.HasDomainContract() {
		fmt.Fprintf(&sys, "回答には担当分野の観点（%s など）を必ず含めてください。",
			strings.Join(desc.ForcedKeywords, "、"))
	}
	if req.ProfileContext != "" {
		fmt.Fprintf(&sys, "\n\n相談者の情報:\n%s", req.ProfileContext)
	}

	return Payload{
		System:  sys.String(),
		History: req.BoundedHistory(),
		Message: message,
	}
}
