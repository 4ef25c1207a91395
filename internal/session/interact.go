package session

import (
	"fmt"
	"time"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/resolve"
	"github.com/ppiankov/normalia/internal/selection"
)

// Click applies a click at pos stamped with the current time. multi is the
// state of the multi-select modifier when the click happened.
func (s *Session) Click(pos int, multi bool) (selection.State, error) {
	return s.ApplyClick(selection.Click{Position: pos, Multi: multi, At: time.Now()})
}

// ApplyClick applies an explicit click event
func (s *Session) ApplyClick(c selection.Click) (selection.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return selection.State{}, ErrClosed
	}
	if !s.loaded {
		return selection.State{}, ErrNotLoaded
	}
	if c.Position < 0 || c.Position >= s.store.Len() {
		return s.selection.State(), &correction.ValidationError{
			Op:     "click",
			Reason: fmt.Sprintf("position %d outside document of %d tokens", c.Position, s.store.Len()),
		}
	}
	return s.selection.Apply(c), nil
}

// Selection returns the current selection state
func (s *Session) Selection() selection.State {
	return s.selection.State()
}

// ClearSelection returns the selection to empty
func (s *Session) ClearSelection() {
	s.selection.Reset()
}

// SelectedText returns the original text under the selection, inner
// whitespace included and trailing whitespace excluded
func (s *Session) SelectedText() string {
	r := s.selection.Range()
	if !r.Set {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Slice(r.Start, r.End)
}

// SelectionCandidates returns the candidates of the token at the start of
// the selection, and whether exactly one position is selected
func (s *Session) SelectionCandidates() (candidates []string, single bool) {
	r := s.selection.Range()
	if !r.Set {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.store.At(r.Start)
	if !ok {
		return nil, false
	}
	return tok.Candidates, r.Kind() == selection.KindSingle
}

// Hover sets the hovered position shared by both views. nil clears it.
func (s *Session) Hover(pos *int) {
	s.mu.Lock()
	if pos == nil {
		s.hover = nil
	} else {
		h := *pos
		s.hover = &h
	}
	s.mu.Unlock()
}

// HoverRange returns the range both views highlight for the current hover
func (s *Session) HoverRange() (resolve.Span, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hover == nil {
		return resolve.Span{}, false
	}
	return resolve.HoverRange(s.index, *s.hover), true
}

// RenderOriginal renders the uncorrected view with the shared hover range
func (s *Session) RenderOriginal() []model.RenderUnit {
	rng, ok := s.HoverRange()
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if !ok {
		return resolve.Original(store, nil)
	}
	return resolve.Original(store, &rng)
}
