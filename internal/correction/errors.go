package correction

import "fmt"

// ValidationError is a request rejected locally before any network call
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// IntegrityWarning reports fetched correction data that violates the index
// invariants. It is never fatal: the offending span is dropped or clamped.
type IntegrityWarning struct {
	FirstIndex    int    `json:"first_index"`
	LastIndex     int    `json:"last_index"`
	ConflictsWith *int   `json:"conflicts_with,omitempty"` // FirstIndex of the span that was kept
	Reason        string `json:"reason"`
}

func (w *IntegrityWarning) Error() string {
	if w.ConflictsWith != nil {
		return fmt.Sprintf("span [%d,%d] %s (kept span at %d)", w.FirstIndex, w.LastIndex, w.Reason, *w.ConflictsWith)
	}
	return fmt.Sprintf("span [%d,%d] %s", w.FirstIndex, w.LastIndex, w.Reason)
}

// Warning reasons
const (
	ReasonOverlap          = "overlaps an existing span"
	ReasonInverted         = "has last index before first index"
	ReasonNegative         = "starts before the document"
	ReasonEmptyReplacement = "has an empty replacement"
	ReasonPastEnd          = "starts past the end of the document"
	ReasonClamped          = "extends past the end of the document, clamped"
)
