// Package selection implements click-driven multi-token range selection.
//
// The transition rules are asymmetric on purpose: a modified click is
// compared against the start of the range only. Clicking left of the start
// moves the start; clicking anywhere at or after the start overwrites the
// end, which can grow or shrink the range.
package selection

import (
	"sync"
	"time"
)

// Kind names the three selection states
type Kind int

const (
	KindEmpty Kind = iota
	KindSingle
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindRange:
		return "range"
	default:
		return "empty"
	}
}

// Range is a closed interval of token positions. The zero value is the
// empty selection.
type Range struct {
	Start int  `json:"start"`
	End   int  `json:"end"`
	Set   bool `json:"set"`
}

// Empty returns the empty selection
func Empty() Range { return Range{} }

// Single returns a selection of exactly one position
func Single(pos int) Range { return Range{Start: pos, End: pos, Set: true} }

// Kind classifies the range
func (r Range) Kind() Kind {
	switch {
	case !r.Set:
		return KindEmpty
	case r.Start == r.End:
		return KindSingle
	default:
		return KindRange
	}
}

// Contains reports whether pos lies inside a non-empty selection
func (r Range) Contains(pos int) bool {
	return r.Set && r.Start <= pos && pos <= r.End
}

// Click is an explicit click event. Multi carries the multi-select
// modifier state as it was when the click happened.
type Click struct {
	Position int
	Multi    bool
	At       time.Time
}

// State is the full controller state
type State struct {
	Range       Range
	LastClickAt time.Time // Timestamp of the latest plain click
}

// Transition applies one click to a state. It is pure: the result depends
// only on its arguments.
func Transition(s State, c Click) State {
	if !c.Multi {
		return State{Range: Single(c.Position), LastClickAt: c.At}
	}

	if !s.Range.Set {
		s.Range = Single(c.Position)
		return s
	}

	if c.Position < s.Range.Start {
		s.Range.Start = c.Position
	} else {
		s.Range.End = c.Position
	}
	return s
}

// RepeatedClick reports whether c is a plain click on the same single
// position that prev selected, within window of the previous plain click.
func RepeatedClick(prev State, c Click, window time.Duration) bool {
	if c.Multi || prev.Range.Kind() != KindSingle || prev.Range.Start != c.Position {
		return false
	}
	if prev.LastClickAt.IsZero() {
		return false
	}
	return c.At.Sub(prev.LastClickAt) <= window
}

// Controller owns the selection of one open document
type Controller struct {
	mu    sync.Mutex
	state State
	now   func() time.Time
}

// NewController creates a controller in the empty state
func NewController() *Controller {
	return &Controller{now: time.Now}
}

// Click applies a click at pos stamped with the controller clock
func (c *Controller) Click(pos int, multi bool) State {
	return c.Apply(Click{Position: pos, Multi: multi, At: c.now()})
}

// Apply applies an explicit click event
func (c *Controller) Apply(click Click) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Transition(c.state, click)
	return c.state
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Range returns the current selection
func (c *Controller) Range() Range {
	return c.State().Range
}

// Reset returns to the empty state
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{}
}
