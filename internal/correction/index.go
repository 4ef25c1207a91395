// Package correction implements the sparse, conflict-free index of
// correction spans over token positions.
package correction

import (
	"sort"

	"github.com/ppiankov/normalia/internal/model"
)

// Index maps first positions to correction spans. Spans are kept sorted by
// FirstIndex and their closed intervals never intersect.
type Index struct {
	spans []model.CorrectionSpan
}

// NewIndex returns an empty index
func NewIndex() *Index {
	return &Index{}
}

// Build converts fetched spans into an index. Spans are processed in
// ascending FirstIndex order so that on conflict the lower start wins.
// docLen < 0 disables the bounds checks.
func Build(spans []model.CorrectionSpan, docLen int) (*Index, []IntegrityWarning) {
	ordered := make([]model.CorrectionSpan, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].FirstIndex != ordered[j].FirstIndex {
			return ordered[i].FirstIndex < ordered[j].FirstIndex
		}
		return ordered[i].LastIndex < ordered[j].LastIndex
	})

	idx := NewIndex()
	var warnings []IntegrityWarning

	for _, span := range ordered {
		if w := checkShape(span, docLen); w != nil {
			warnings = append(warnings, *w)
			if w.Reason != ReasonClamped {
				continue
			}
			span.LastIndex = docLen - 1
		}
		if err := idx.Insert(span); err != nil {
			warnings = append(warnings, *err.(*IntegrityWarning))
		}
	}

	return idx, warnings
}

func checkShape(span model.CorrectionSpan, docLen int) *IntegrityWarning {
	reason := ""
	switch {
	case span.FirstIndex < 0:
		reason = ReasonNegative
	case span.LastIndex < span.FirstIndex:
		reason = ReasonInverted
	case span.ReplacementText == "":
		reason = ReasonEmptyReplacement
	case docLen >= 0 && span.FirstIndex >= docLen:
		reason = ReasonPastEnd
	case docLen >= 0 && span.LastIndex >= docLen:
		reason = ReasonClamped
	default:
		return nil
	}
	return &IntegrityWarning{FirstIndex: span.FirstIndex, LastIndex: span.LastIndex, Reason: reason}
}

// Insert adds a span. A span that intersects an existing one is rejected
// with an *IntegrityWarning and the index is left unchanged.
func (x *Index) Insert(span model.CorrectionSpan) error {
	if w := checkShape(span, -1); w != nil {
		return w
	}

	i := x.search(span.FirstIndex)
	if i > 0 && x.spans[i-1].Overlaps(span) {
		return overlapWarning(span, x.spans[i-1])
	}
	if i < len(x.spans) && x.spans[i].Overlaps(span) {
		return overlapWarning(span, x.spans[i])
	}

	x.spans = append(x.spans, model.CorrectionSpan{})
	copy(x.spans[i+1:], x.spans[i:])
	x.spans[i] = span
	return nil
}

func overlapWarning(rejected, kept model.CorrectionSpan) *IntegrityWarning {
	first := kept.FirstIndex
	return &IntegrityWarning{
		FirstIndex:    rejected.FirstIndex,
		LastIndex:     rejected.LastIndex,
		ConflictsWith: &first,
		Reason:        ReasonOverlap,
	}
}

// search returns the first slot whose FirstIndex is >= first
func (x *Index) search(first int) int {
	return sort.Search(len(x.spans), func(i int) bool {
		return x.spans[i].FirstIndex >= first
	})
}

// Len returns the number of spans
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.spans)
}

// Get returns the span starting exactly at first
func (x *Index) Get(first int) (model.CorrectionSpan, bool) {
	if x == nil {
		return model.CorrectionSpan{}, false
	}
	i := x.search(first)
	if i < len(x.spans) && x.spans[i].FirstIndex == first {
		return x.spans[i], true
	}
	return model.CorrectionSpan{}, false
}

// Covering returns the span whose interval contains pos
func (x *Index) Covering(pos int) (model.CorrectionSpan, bool) {
	if x == nil {
		return model.CorrectionSpan{}, false
	}
	i := x.search(pos + 1)
	if i > 0 && x.spans[i-1].Covers(pos) {
		return x.spans[i-1], true
	}
	return model.CorrectionSpan{}, false
}

// Spans returns a copy of all spans ordered by FirstIndex
func (x *Index) Spans() []model.CorrectionSpan {
	if x == nil {
		return nil
	}
	out := make([]model.CorrectionSpan, len(x.spans))
	copy(out, x.spans)
	return out
}

// Equal reports whether both indexes hold the same spans
func (x *Index) Equal(o *Index) bool {
	if x.Len() != o.Len() {
		return false
	}
	for i := 0; i < x.Len(); i++ {
		if x.spans[i] != o.spans[i] {
			return false
		}
	}
	return true
}
