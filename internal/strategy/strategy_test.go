package strategy

import (
	"strings"
	"testing"

	"github.com/kotori-ai/kotori/internal/registry"
	"github.com/kotori-ai/kotori/pkg/models"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	return NewRouter(registry.NewDefault(), DefaultConfig())
}

func decideText(t *testing.T, msg string) models.Decision {
	t.Helper()
	return newTestRouter(t).Decide(models.DispatchRequest{Message: msg})
}

func TestDecide_MediaOverride(t *testing.T) {
	// A media flag wins regardless of keyword content.
	tests := []struct {
		name  string
		flags models.MediaFlags
		msg   string
	}{
		{"image with sleep keywords", models.MediaFlags{Image: true}, "夜泣きがひどくて眠れない"},
		{"audio with nutrition keywords", models.MediaFlags{Audio: true}, "離乳食のレシピを教えて"},
		{"image with emergency keywords", models.MediaFlags{Image: true}, "熱が出ています"},
		{"image with empty message", models.MediaFlags{Image: true}, ""},
	}

	r := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Decide(models.DispatchRequest{Message: tt.msg, MediaFlags: tt.flags})
			if got.ResponderID != registry.IDMedia {
				t.Errorf("ResponderID = %q, want %q", got.ResponderID, registry.IDMedia)
			}
			if got.Confidence != 1.0 {
				t.Errorf("Confidence = %v, want 1.0", got.Confidence)
			}
			if got.Strategy != models.StrategyMediaOverride {
				t.Errorf("Strategy = %q", got.Strategy)
			}
		})
	}
}

func TestDecide_ExplicitIntent(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"japanese directive", "近くの小児科を調べてください"},
		{"english directive", "search for baby food recalls"},
		{"slash directive", "/search 保育園 空き"},
		{"typo within one edit", "searh for parks nearby"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decideText(t, tt.msg)
			if got.ResponderID != registry.IDSearch {
				t.Errorf("ResponderID = %q, want %q", got.ResponderID, registry.IDSearch)
			}
			if got.Confidence != 1.0 || got.Strategy != models.StrategyExplicitIntent {
				t.Errorf("got %+v, want explicit intent at 1.0", got)
			}
		})
	}
}

func TestDecide_ExplicitIntent_NoFuzzyOnShortTokens(t *testing.T) {
	// Short words one edit from nothing in the table must not trigger.
	got := decideText(t, "soup recipe please")
	if got.Strategy == models.StrategyExplicitIntent {
		t.Errorf("unrelated message triggered explicit intent: %+v", got)
	}
}

func TestDecide_EmergencyOverride(t *testing.T) {
	tests := []string{
		"熱が出て心配です",
		"子どもがけいれんしています",
		"ボタン電池を誤飲したかもしれない",
		"頭を打って意識がない",
	}

	for _, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			got := decideText(t, msg)
			if got.ResponderID != registry.IDHealth {
				t.Errorf("ResponderID = %q, want %q", got.ResponderID, registry.IDHealth)
			}
			if got.Confidence != 1.0 {
				t.Errorf("Confidence = %v, want 1.0", got.Confidence)
			}
			if got.Urgency != models.UrgencyHigh {
				t.Errorf("Urgency = %q, want high", got.Urgency)
			}
			if got.Strategy != models.StrategyEmergencyOverride {
				t.Errorf("Strategy = %q", got.Strategy)
			}
		})
	}
}

func TestDecide_FeverScenarioBypassesScoring(t *testing.T) {
	// "熱が出て心配です" contains an anxiety cue (心配) but the emergency
	// scan must fire first.
	got := decideText(t, "熱が出て心配です")
	if got.Strategy != models.StrategyEmergencyOverride {
		t.Fatalf("Strategy = %q, want emergency override", got.Strategy)
	}
	if got.ResponderID != registry.IDHealth || got.Confidence != 1.0 || got.Urgency != models.UrgencyHigh {
		t.Errorf("unexpected decision: %+v", got)
	}
}

func TestDecide_EmptyMessageDefaultsToGeneralist(t *testing.T) {
	got := decideText(t, "")
	if got.ResponderID != registry.IDGeneral {
		t.Errorf("ResponderID = %q, want %q", got.ResponderID, registry.IDGeneral)
	}
	if got.Confidence < 0.3 || got.Confidence > 0.4 {
		t.Errorf("Confidence = %v, want within [0.3, 0.4]", got.Confidence)
	}
	if got.Strategy != models.StrategyDefault {
		t.Errorf("Strategy = %q", got.Strategy)
	}
}

func TestDecide_HybridAgreementBound(t *testing.T) {
	// Keyword and semantic stages both pick sleep; fused confidence must
	// lie within [max(Sk, Ss), 0.95].
	r := newTestRouter(t)
	msg := "夜泣きがひどくて眠れない"

	kw := r.scoreKeywords(strings.ToLower(msg))
	sem := r.classify(strings.ToLower(msg))
	if kw.ID != "sleep" || sem.ID != "sleep" {
		t.Fatalf("test premise broken: kw=%q sem=%q", kw.ID, sem.ID)
	}

	got := r.Decide(models.DispatchRequest{Message: msg})
	sk := kw.Confidence * r.cfg.KeywordWeight
	ss := sem.Confidence * r.cfg.SemanticWeight
	lo := sk
	if ss > lo {
		lo = ss
	}

	if got.ResponderID != "sleep" {
		t.Errorf("ResponderID = %q, want sleep", got.ResponderID)
	}
	if got.Confidence < lo || got.Confidence > 0.95 {
		t.Errorf("Confidence = %v, want within [%v, 0.95]", got.Confidence, lo)
	}
	if got.Strategy != models.StrategyHybrid {
		t.Errorf("Strategy = %q", got.Strategy)
	}
}

func TestFuse_DisagreementPicksHigherScore(t *testing.T) {
	// Keyword winner nutrition at 0.6, semantic winner sleep at 0.5,
	// Wk=0.4, Ws=0.6: Sk=0.24, Ss=0.30, so sleep wins at 0.30.
	reg := registry.NewDefault()
	r := NewRouter(reg, Config{KeywordWeight: 0.4, SemanticWeight: 0.6, DefaultConfidence: 0.35})

	got := r.fuse(
		keywordScore{ID: "nutrition", Confidence: 0.6},
		semanticScore{ID: "sleep", Confidence: 0.5, Urgency: models.UrgencyMedium, EmotionTone: models.EmotionTired},
	)

	if got.ResponderID != "sleep" {
		t.Errorf("ResponderID = %q, want sleep", got.ResponderID)
	}
	if diff := got.Confidence - 0.30; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Confidence = %v, want 0.30", got.Confidence)
	}
	if got.Urgency != models.UrgencyMedium || got.EmotionTone != models.EmotionTired {
		t.Errorf("semantic urgency/emotion not carried: %+v", got)
	}
	if !strings.Contains(got.Rationale, "Sk=0.24") || !strings.Contains(got.Rationale, "Ss=0.30") {
		t.Errorf("Rationale missing sub-scores: %q", got.Rationale)
	}
}

func TestFuse_UnresolvableCandidateSubstituted(t *testing.T) {
	// A candidate id that does not resolve in the registry is treated as
	// no candidate; with nothing left the generalist is substituted.
	reg := registry.New("general")
	if err := reg.Register(models.Descriptor{ID: "general", DisplayName: "総合相談"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r := NewRouter(reg, DefaultConfig())

	got := r.fuse(keywordScore{}, semanticScore{ID: "play", Confidence: 0.5})
	if got.ResponderID != "general" {
		t.Errorf("ResponderID = %q, want general", got.ResponderID)
	}
	if got.Strategy != models.StrategyDefault {
		t.Errorf("Strategy = %q, want default", got.Strategy)
	}
}

func TestScoreKeywords_TieBrokenByRegistrationOrder(t *testing.T) {
	reg := registry.New("general")
	for _, d := range []models.Descriptor{
		{ID: "first", Keywords: []string{"絵本", "紙芝居"}, PriorityWeight: 1.0},
		{ID: "second", Keywords: []string{"絵本", "図鑑"}, PriorityWeight: 1.0},
		{ID: "general"},
	} {
		if err := reg.Register(d); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	r := NewRouter(reg, DefaultConfig())

	got := r.scoreKeywords("おすすめの絵本はありますか")
	if got.ID != "first" {
		t.Errorf("tie should go to the earlier registration, got %q", got.ID)
	}
}

func TestScoreKeywords_ForcedKeywordWinsOutright(t *testing.T) {
	r := newTestRouter(t)

	got := r.scoreKeywords("離乳食の進め方がわからない")
	if got.ID != "nutrition" {
		t.Errorf("ID = %q, want nutrition", got.ID)
	}
	if got.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", got.Confidence)
	}
}

func TestClassify_FirstBucketWins(t *testing.T) {
	r := newTestRouter(t)

	// Message matches both the illness and sleep buckets; illness is
	// checked first.
	got := r.classify("体調が悪いのか眠れないようです")
	if got.ID != "health" {
		t.Errorf("ID = %q, want health", got.ID)
	}
	if got.Urgency != models.UrgencyMedium || got.EmotionTone != models.EmotionAnxious {
		t.Errorf("unexpected derivation: %+v", got)
	}
}

func TestClassify_DefaultNeutralLow(t *testing.T) {
	r := newTestRouter(t)

	got := r.classify("こんにちは")
	if got.ID != "" || got.Confidence != 0 {
		t.Errorf("unexpected candidate: %+v", got)
	}
	if got.Urgency != models.UrgencyLow || got.EmotionTone != models.EmotionNeutral {
		t.Errorf("default should be neutral/low: %+v", got)
	}
}

func TestDecide_Deterministic(t *testing.T) {
	// The strategy is state-free: identical requests produce identical decisions.
	r := newTestRouter(t)
	req := models.DispatchRequest{Message: "寝かしつけに毎晩苦労しています"}

	first := r.Decide(req)
	for i := 0; i < 5; i++ {
		if got := r.Decide(req); got != first {
			t.Fatalf("Decide is not deterministic: %+v vs %+v", got, first)
		}
	}
}
