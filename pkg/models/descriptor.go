package models

// Category classifies a responder within the catalog.
type Category string

const (
	// CategorySpecialist marks a responder with a defined consultation domain.
	CategorySpecialist Category = "specialist"
	// CategoryUtility marks a responder providing a capability rather than a domain.
	CategoryUtility Category = "utility"
	// CategoryGeneral marks the fallback generalist responder.
	CategoryGeneral Category = "general"
)

// Descriptor describes a registered responder and its routing metadata.
// Descriptors are immutable once the registry is built; callers receive
// defensive copies and must not rely on aliasing.
type Descriptor struct {
	// ID is the unique identifier for this responder.
	ID string `yaml:"id" json:"id"`
	// DisplayName is the human-readable name shown in results.
	DisplayName string `yaml:"display_name" json:"display_name"`
	// Keywords is the keyword profile used for routing scores.
	Keywords []string `yaml:"keywords" json:"keywords"`
	// ForcedKeywords are terms that route to this responder outright
	// during keyword scoring, bypassing the ratio score.
	ForcedKeywords []string `yaml:"forced_keywords" json:"forced_keywords,omitempty"`
	// PriorityWeight scales this responder's keyword score.
	PriorityWeight float64 `yaml:"priority_weight" json:"priority_weight"`
	// RequiredResources lists capabilities the responder needs at runtime.
	RequiredResources []string `yaml:"required_resources" json:"required_resources,omitempty"`
	// Category classifies the responder.
	Category Category `yaml:"category" json:"category"`
}

// HasDomainContract reports whether the responder has a defined domain
// contract, meaning its answers are expected to contain at least one of
// its forced keywords.
func (d Descriptor) HasDomainContract() bool {
	return len(d.ForcedKeywords) > 0
}

// Clone returns a deep copy of the descriptor so registry internals
// never alias caller-held slices.
func (d Descriptor) Clone() Descriptor {
	c := d
	c.Keywords = append([]string(nil), d.Keywords...)
	c.ForcedKeywords = append([]string(nil), d.ForcedKeywords...)
	c.RequiredResources = append([]string(nil), d.RequiredResources...)
	return c
}
