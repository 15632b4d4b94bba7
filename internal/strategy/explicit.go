package strategy

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/kotori-ai/kotori/internal/registry"
)

// defaultDirectiveTokens maps unambiguous directive tokens to responder
// ids. A directive in the message bypasses all scoring.
var defaultDirectiveTokens = map[string]string{
	"検索して":   registry.IDSearch,
	"調べて":    registry.IDSearch,
	"ググって":   registry.IDSearch,
	"search":  registry.IDSearch,
	"/search": registry.IDSearch,
	"lookup":  registry.IDSearch,
}

// fuzzyMinLen is the minimum token length for typo-tolerant matching.
// Shorter tokens produce too many accidental one-edit neighbors.
const fuzzyMinLen = 4

// matchDirective scans the lowercased message for a directive token.
// Non-ASCII tokens are matched by exact containment; ASCII tokens of at
// least fuzzyMinLen runes also match message words within one edit, so
// "serach" still triggers the search responder.
func (r *Router) matchDirective(lower string) (id, token string, ok bool) {
	for tok, target := range r.directive {
		if strings.Contains(lower, tok) {
			return target, tok, true
		}
	}

	words := strings.Fields(lower)
	for tok, target := range r.directive {
		if !isASCII(tok) || len(tok) < fuzzyMinLen {
			continue
		}
		for _, w := range words {
			if levenshtein.ComputeDistance(w, tok) <= 1 {
				return target, tok, true
			}
		}
	}
	return "", "", false
}

// isASCII reports whether s contains only ASCII bytes.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
