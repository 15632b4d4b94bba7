package parallel

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kotori-ai/kotori/pkg/models"
)

// summaryRuneLimit bounds each per-responder summary.
const summaryRuneLimit = 300

// mergedRuneLimit bounds the composite answer.
const mergedRuneLimit = 1200

// Synthesizer merges per-responder summaries into one composite answer.
// Implementations may call a generative backend; a failure must never
// lose prior work, so the coordinator always falls back to the
// deterministic merge.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, parts []SummaryPart) (string, error)
}

// SummaryPart is one successful responder's summarized contribution.
type SummaryPart struct {
	ResponderID string
	DisplayName string
	Summary     string
}

// synthesize builds the merged summary for successful results. If a
// Synthesizer is configured it gets the first try; any error falls back
// to the deterministic concatenation of the same summaries.
func (c *Coordinator) synthesize(ctx context.Context, question string, results []models.DispatchResult) string {
	var parts []SummaryPart
	for _, res := range results {
		if !res.Succeeded {
			continue
		}
		parts = append(parts, SummaryPart{
			ResponderID: res.ResponderID,
			DisplayName: res.DisplayName,
			Summary:     summarize(res.ResponseText, summaryRuneLimit),
		})
	}
	if len(parts) == 0 {
		return ""
	}

	if c.cfg.Synthesizer != nil {
		merged, err := c.cfg.Synthesizer.Synthesize(ctx, question, parts)
		if err == nil && merged != "" {
			return truncateRunes(merged, mergedRuneLimit)
		}
		if err != nil {
			log.Printf("[parallel] synthesis failed, using deterministic merge: %v", err)
		}
	}

	return mergeParts(parts)
}

// mergeParts deterministically concatenates summaries in task order.
func mergeParts(parts []SummaryPart) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "【%s】\n%s", p.DisplayName, p.Summary)
	}
	return truncateRunes(b.String(), mergedRuneLimit)
}

// bulletPrefixes are line prefixes recognized as structured content.
var bulletPrefixes = []string{"-", "*", "・", "•", "①", "②", "③", "1.", "2.", "3.", "4.", "5."}

// summarize extracts structured lines (bullets or numbering) from text;
// with none present it head-truncates by runes.
func summarize(text string, limit int) string {
	var picked []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, p := range bulletPrefixes {
			if strings.HasPrefix(trimmed, p) {
				picked = append(picked, trimmed)
				break
			}
		}
	}

	if len(picked) > 0 {
		return truncateRunes(strings.Join(picked, "\n"), limit)
	}
	return truncateRunes(strings.TrimSpace(text), limit)
}

// truncateRunes truncates s to at most limit runes, appending an
// ellipsis marker when anything was cut.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
