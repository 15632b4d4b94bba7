package registry

import "github.com/kotori-ai/kotori/pkg/models"

// Well-known responder ids.
const (
	// IDGeneral is the default generalist responder.
	IDGeneral = "general"
	// IDHealth is the health and safety responder used for emergencies.
	IDHealth = "health"
	// IDMedia is the responder for image and audio attachments.
	IDMedia = "media"
	// IDSearch is the responder for explicit search requests.
	IDSearch = "search"
)

// defaultCatalog is the built-in responder catalog. Registration order
// matters: keyword-score ties are broken by position in this list.
var defaultCatalog = []models.Descriptor{
	{
		ID:          "nutrition",
		DisplayName: "栄養相談",
		Keywords: []string{
			"食事", "離乳食", "ミルク", "授乳", "食べない", "好き嫌い",
			"おやつ", "栄養", "レシピ", "アレルギー食", "食育",
		},
		ForcedKeywords:    []string{"栄養", "離乳食"},
		PriorityWeight:    1.0,
		RequiredResources: []string{"anthropic"},
		Category:          models.CategorySpecialist,
	},
	{
		ID:          "sleep",
		DisplayName: "睡眠相談",
		Keywords: []string{
			"睡眠", "寝ない", "寝かしつけ", "夜泣き", "昼寝", "眠い",
			"夜中に起きる", "早朝", "生活リズム", "寝つき",
		},
		ForcedKeywords:    []string{"睡眠", "夜泣き"},
		PriorityWeight:    1.0,
		RequiredResources: []string{"anthropic"},
		Category:          models.CategorySpecialist,
	},
	{
		ID:          "development",
		DisplayName: "発達相談",
		Keywords: []string{
			"発達", "成長", "言葉が遅い", "歩かない", "首すわり", "ハイハイ",
			"おすわり", "指差し", "発語", "検診",
		},
		ForcedKeywords:    []string{"発達", "成長"},
		PriorityWeight:    1.0,
		RequiredResources: []string{"anthropic"},
		Category:          models.CategorySpecialist,
	},
	{
		ID:          "play",
		DisplayName: "遊び・知育",
		Keywords: []string{
			"遊び", "おもちゃ", "絵本", "知育", "公園", "室内遊び",
			"退屈", "工作", "歌",
		},
		ForcedKeywords:    []string{"遊び"},
		PriorityWeight:    1.0,
		RequiredResources: []string{"anthropic"},
		Category:          models.CategorySpecialist,
	},
	{
		ID:          "behavior",
		DisplayName: "しつけ相談",
		Keywords: []string{
			"しつけ", "イヤイヤ", "叱り方", "わがまま", "かんしゃく",
			"トイレトレーニング", "歯磨きを嫌がる", "噛みつき", "手が出る",
		},
		ForcedKeywords:    []string{"しつけ", "イヤイヤ"},
		PriorityWeight:    1.0,
		RequiredResources: []string{"anthropic"},
		Category:          models.CategorySpecialist,
	},
	{
		ID:          IDHealth,
		DisplayName: "健康・安全",
		Keywords: []string{
			"体調", "病気", "病院", "薬", "予防接種", "けが",
			"湿疹", "肌荒れ", "アレルギー", "咳", "鼻水", "下痢",
		},
		ForcedKeywords:    []string{"受診", "病院"},
		PriorityWeight:    1.2,
		RequiredResources: []string{"anthropic"},
		Category:          models.CategorySpecialist,
	},
	{
		ID:          IDSearch,
		DisplayName: "検索",
		Keywords: []string{
			"検索", "調べて", "最新", "ニュース", "近くの",
		},
		PriorityWeight:    1.0,
		RequiredResources: []string{"anthropic", "web_search"},
		Category:          models.CategoryUtility,
	},
	{
		ID:                IDMedia,
		DisplayName:       "メディア解析",
		Keywords:          []string{"写真", "画像", "動画", "音声"},
		PriorityWeight:    1.0,
		RequiredResources: []string{"anthropic", "vision"},
		Category:          models.CategoryUtility,
	},
	{
		ID:                IDGeneral,
		DisplayName:       "総合相談",
		Keywords:          []string{"相談", "質問", "教えて"},
		PriorityWeight:    0.8,
		RequiredResources: []string{"anthropic"},
		Category:          models.CategoryGeneral,
	},
}

// NewDefault builds a registry populated with the built-in catalog.
func NewDefault() *Registry {
	r := New(IDGeneral)
	for _, d := range defaultCatalog {
		// Built-in descriptors always have ids; error is impossible here.
		_ = r.Register(d)
	}
	return r
}
