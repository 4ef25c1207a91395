// Package resolve turns raw tokens plus correction spans into the ordered
// sequence of units a view renders.
package resolve

import (
	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/selection"
	"github.com/ppiankov/normalia/internal/tokens"
)

// Highlights answers whether a position is currently animating
type Highlights interface {
	Lookup(pos int) (nonce uint64, ok bool)
}

// PositionSet is a static Highlights implementation (position -> nonce)
type PositionSet map[int]uint64

// Lookup implements Highlights
func (s PositionSet) Lookup(pos int) (uint64, bool) {
	n, ok := s[pos]
	return n, ok
}

// Input is everything the resolver reads. Highlights and Hover are optional.
type Input struct {
	Tokens      *tokens.Store
	Corrections *correction.Index
	Selection   selection.Range
	Highlights  Highlights
	Hover       *int
}

// Result is the resolved document
type Result struct {
	Units    []model.RenderUnit            `json:"units"`
	Warnings []correction.IntegrityWarning `json:"warnings,omitempty"`
}

// Resolve walks positions 0..N-1 once. A span starting at i becomes one
// unit covering [i, last] and the walk resumes at last+1, so covered
// positions never produce units of their own. Whitespace after a unit is
// always the whitespace of the last original token it covers.
//
// Resolve is pure and never fails: inconsistent spans are clamped or
// skipped and reported in Result.Warnings.
func Resolve(in Input) Result {
	n := in.Tokens.Len()
	res := Result{Units: make([]model.RenderUnit, 0, n)}

	var hover *Span
	if in.Hover != nil {
		h := HoverRange(in.Corrections, *in.Hover)
		hover = &h
	}

	for i := 0; i < n; {
		tok, _ := in.Tokens.At(i)

		if span, ok := in.Corrections.Get(i); ok {
			last := span.LastIndex
			if last >= n {
				res.Warnings = append(res.Warnings, correction.IntegrityWarning{
					FirstIndex: span.FirstIndex,
					LastIndex:  span.LastIndex,
					Reason:     correction.ReasonClamped,
				})
				last = n - 1
			}
			res.Warnings = append(res.Warnings, shadowed(in.Corrections, i, last)...)

			closing, _ := in.Tokens.At(last)
			unit := model.RenderUnit{
				Kind:            model.UnitKindUnit,
				Text:            span.ReplacementText,
				WhitespaceAfter: closing.WhitespaceAfter,
				From:            i,
				To:              last,
				Classes:         []model.UnitClass{model.ClassCorrected},
			}
			res.Units = append(res.Units, decorate(unit, in, hover))
			i = last + 1
			continue
		}

		if !tok.IsWord {
			res.Units = append(res.Units, model.RenderUnit{
				Kind:            model.UnitKindLiteral,
				Text:            tok.Text,
				WhitespaceAfter: tok.WhitespaceAfter,
				From:            i,
				To:              i,
			})
			i++
			continue
		}

		unit := model.RenderUnit{
			Kind:            model.UnitKindUnit,
			Text:            tok.Text,
			WhitespaceAfter: tok.WhitespaceAfter,
			From:            i,
			To:              i,
		}
		if tok.NeedsCorrection() {
			unit.Classes = append(unit.Classes, model.ClassCandidate)
		}
		res.Units = append(res.Units, decorate(unit, in, hover))
		i++
	}

	return res
}

// decorate adds the state classes keyed on the unit's leading position
func decorate(u model.RenderUnit, in Input, hover *Span) model.RenderUnit {
	if in.Selection.Contains(u.From) {
		u.Classes = append(u.Classes, model.ClassSelected)
	}
	if in.Highlights != nil {
		if nonce, ok := in.Highlights.Lookup(u.From); ok {
			u.Classes = append(u.Classes, model.ClassHighlighted)
			u.Nonce = nonce
		}
	}
	if hover != nil && hover.Contains(u.From) {
		u.Hovered = true
	}
	return u
}

// shadowed reports spans that start strictly inside [first, last]. They
// lose to the span at first and are never rendered.
func shadowed(idx *correction.Index, first, last int) []correction.IntegrityWarning {
	var warnings []correction.IntegrityWarning
	for p := first + 1; p <= last; p++ {
		if s, ok := idx.Get(p); ok {
			kept := first
			warnings = append(warnings, correction.IntegrityWarning{
				FirstIndex:    s.FirstIndex,
				LastIndex:     s.LastIndex,
				ConflictsWith: &kept,
				Reason:        correction.ReasonOverlap,
			})
		}
	}
	return warnings
}
