package resolve

import (
	"fmt"
	"strings"

	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/tokens"
)

// PlainText concatenates units with their trailing whitespace. With no
// corrections this is the original document byte for byte.
func PlainText(units []model.RenderUnit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteString(u.Text)
		b.WriteString(u.WhitespaceAfter)
	}
	return b.String()
}

// TaggedText is PlainText with corrected units wrapped as
// <norm orig='ORIGINAL'>REPLACEMENT</norm>.
func TaggedText(units []model.RenderUnit, store *tokens.Store) string {
	var b strings.Builder
	for _, u := range units {
		if u.Has(model.ClassCorrected) {
			orig := strings.ReplaceAll(store.Slice(u.From, u.To), "'", "&apos;")
			fmt.Fprintf(&b, "<norm orig='%s'>%s</norm>", orig, u.Text)
		} else {
			b.WriteString(u.Text)
		}
		b.WriteString(u.WhitespaceAfter)
	}
	return b.String()
}
