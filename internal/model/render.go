package model

// UnitKind distinguishes clickable units from literal fragments
type UnitKind string

const (
	UnitKindLiteral UnitKind = "literal" // Non-word token, no click target
	UnitKindUnit    UnitKind = "unit"    // Word or correction span, clickable
)

// UnitClass is a visual state attached to a render unit
type UnitClass string

const (
	ClassCorrected   UnitClass = "corrected"   // Unit shows a correction span
	ClassCandidate   UnitClass = "candidate"   // Word flagged for correction
	ClassSelected    UnitClass = "selected"    // Leading position inside the selection
	ClassHighlighted UnitClass = "highlighted" // Recently changed, animating
)

// RenderUnit is one element of the resolved document
type RenderUnit struct {
	Kind            UnitKind    `json:"kind"`
	Text            string      `json:"text"`
	WhitespaceAfter string      `json:"whitespace_after,omitempty"` // Taken from the last covered original token
	From            int         `json:"from"`                       // First covered position (leading position)
	To              int         `json:"to"`                         // Last covered position
	Classes         []UnitClass `json:"classes,omitempty"`
	Hovered         bool        `json:"hovered,omitempty"` // Inside the shared hover range
	Nonce           uint64      `json:"nonce,omitempty"`   // Animation nonce when highlighted
}

// Has reports whether the unit carries class c
func (u RenderUnit) Has(c UnitClass) bool {
	for _, got := range u.Classes {
		if got == c {
			return true
		}
	}
	return false
}

// Clickable reports whether the unit is a click target
func (u RenderUnit) Clickable() bool {
	return u.Kind == UnitKindUnit
}
