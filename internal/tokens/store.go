// Package tokens holds the immutable token sequence of one document version.
package tokens

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/ppiankov/normalia/internal/model"
)

// Store is an ordered, immutable sequence of tokens. A new fetch always
// produces a new Store; nothing mutates one after construction.
type Store struct {
	tokens []model.Token
	byID   map[model.TokenID]int
}

// NewStore builds a store from fetched tokens. Tokens are ordered by
// position and positions must be exactly 0..N-1.
func NewStore(toks []model.Token) (*Store, error) {
	ordered := make([]model.Token, len(toks))
	for i, t := range toks {
		t.Candidates = slices.Clone(t.Candidates)
		ordered[i] = t
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	byID := make(map[model.TokenID]int, len(ordered))
	for i, t := range ordered {
		if t.Position != i {
			return nil, fmt.Errorf("token positions not contiguous: expected %d, got %d", i, t.Position)
		}
		if prev, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate token id %d at positions %d and %d", t.ID, prev, i)
		}
		byID[t.ID] = i
	}

	return &Store{tokens: ordered, byID: byID}, nil
}

// Len returns the number of tokens
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tokens)
}

// At returns the token at pos
func (s *Store) At(pos int) (model.Token, bool) {
	if s == nil || pos < 0 || pos >= len(s.tokens) {
		return model.Token{}, false
	}
	t := s.tokens[pos]
	t.Candidates = slices.Clone(t.Candidates)
	return t, true
}

// ByID looks a token up by its gateway identifier
func (s *Store) ByID(id model.TokenID) (model.Token, bool) {
	if s == nil {
		return model.Token{}, false
	}
	pos, ok := s.byID[id]
	if !ok {
		return model.Token{}, false
	}
	return s.At(pos)
}

// Tokens returns a copy of all tokens in position order
func (s *Store) Tokens() []model.Token {
	if s == nil {
		return nil
	}
	out := make([]model.Token, len(s.tokens))
	for i := range s.tokens {
		out[i], _ = s.At(i)
	}
	return out
}

// Text reproduces the original document exactly
func (s *Store) Text() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, t := range s.tokens {
		b.WriteString(t.Text)
		b.WriteString(t.WhitespaceAfter)
	}
	return b.String()
}

// Slice returns the original text of positions [from, to] with the
// whitespace between them but without the trailing whitespace of to.
// Out-of-range bounds are clamped.
func (s *Store) Slice(from, to int) string {
	if s == nil || len(s.tokens) == 0 {
		return ""
	}
	from = max(from, 0)
	to = min(to, len(s.tokens)-1)
	if from > to {
		return ""
	}

	var b strings.Builder
	for i := from; i <= to; i++ {
		b.WriteString(s.tokens[i].Text)
		if i < to {
			b.WriteString(s.tokens[i].WhitespaceAfter)
		}
	}
	return b.String()
}
