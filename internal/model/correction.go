package model

// CorrectionSpan replaces the closed token interval [FirstIndex, LastIndex]
// with a single author-supplied text.
type CorrectionSpan struct {
	FirstIndex      int    `json:"first_index"`
	LastIndex       int    `json:"last_index"`
	ReplacementText string `json:"replacement_text"`
}

// Covers reports whether pos falls inside the span
func (s CorrectionSpan) Covers(pos int) bool {
	return pos >= s.FirstIndex && pos <= s.LastIndex
}

// Overlaps reports whether the two closed intervals share at least one position
func (s CorrectionSpan) Overlaps(o CorrectionSpan) bool {
	return s.FirstIndex <= o.LastIndex && o.FirstIndex <= s.LastIndex
}

// Len returns the number of original positions the span replaces
func (s CorrectionSpan) Len() int {
	return s.LastIndex - s.FirstIndex + 1
}
