package strategy

import "strings"

// defaultEmergencyKeywords is the small fixed high-risk list. A hit
// routes straight to the health responder at full confidence with high
// urgency. Keep this list short: it is scanned on every request before
// any other text analysis.
var defaultEmergencyKeywords = []string{
	"熱が",
	"発熱",
	"高熱",
	"けいれん",
	"痙攣",
	"誤飲",
	"誤嚥",
	"呼吸が",
	"息が苦し",
	"意識がない",
	"ぐったり",
	"嘔吐が止まらない",
	"血が",
	"頭を打っ",
	"やけど",
	"emergency",
}

// matchEmergency returns the first emergency keyword contained in the
// lowercased message.
func (r *Router) matchEmergency(lower string) (string, bool) {
	for _, kw := range r.emergency {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}
