package resolve

import (
	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/tokens"
)

// Span is a closed range of positions
type Span struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether pos lies in the span
func (s Span) Contains(pos int) bool {
	return s.From <= pos && pos <= s.To
}

// HoverRange maps a hovered position to the range both views highlight:
// the whole correction span when h starts or falls inside one, else [h, h].
func HoverRange(idx *correction.Index, h int) Span {
	if s, ok := idx.Get(h); ok {
		return Span{From: h, To: s.LastIndex}
	}
	if s, ok := idx.Covering(h); ok {
		return Span{From: s.FirstIndex, To: s.LastIndex}
	}
	return Span{From: h, To: h}
}

// Original renders the uncorrected view: one unit per token, every token a
// hover target. Units inside hover are marked so a hover on either view
// lights up the same span on the other.
func Original(store *tokens.Store, hover *Span) []model.RenderUnit {
	units := make([]model.RenderUnit, 0, store.Len())
	for _, tok := range store.Tokens() {
		kind := model.UnitKindUnit
		if !tok.IsWord {
			kind = model.UnitKindLiteral
		}
		units = append(units, model.RenderUnit{
			Kind:            kind,
			Text:            tok.Text,
			WhitespaceAfter: tok.WhitespaceAfter,
			From:            tok.Position,
			To:              tok.Position,
			Hovered:         hover != nil && hover.Contains(tok.Position),
		})
	}
	return units
}
