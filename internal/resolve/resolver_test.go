package resolve

import (
	"reflect"
	"testing"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/selection"
	"github.com/ppiankov/normalia/internal/tokens"
)

func words(t *testing.T, texts ...string) *tokens.Store {
	t.Helper()
	toks := make([]model.Token, len(texts))
	for i, text := range texts {
		toks[i] = model.Token{ID: model.TokenID(100 + i), Position: i, Text: text, IsWord: text != "." && text != ","}
		if i < len(texts)-1 && texts[i+1] != "." && texts[i+1] != "," {
			toks[i].WhitespaceAfter = " "
		}
	}
	store, err := tokens.NewStore(toks)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func spans(t *testing.T, docLen int, s ...model.CorrectionSpan) *correction.Index {
	t.Helper()
	idx, warnings := correction.Build(s, docLen)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return idx
}

func texts(units []model.RenderUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Text
	}
	return out
}

func TestResolve_CorrectionCoversRange(t *testing.T) {
	store := words(t, "The", "quick", "brown", "fox", ".")
	idx := spans(t, store.Len(), model.CorrectionSpan{FirstIndex: 1, LastIndex: 3, ReplacementText: "fast animal"})

	res := Resolve(Input{Tokens: store, Corrections: idx})

	if got, want := texts(res.Units), []string{"The", "fast animal", "."}; !reflect.DeepEqual(got, want) {
		t.Fatalf("units = %v, want %v", got, want)
	}

	corrected := res.Units[1]
	if corrected.From != 1 || corrected.To != 3 || !corrected.Has(model.ClassCorrected) {
		t.Errorf("unexpected corrected unit: %+v", corrected)
	}
	if res.Units[2].Kind != model.UnitKindLiteral || res.Units[2].Clickable() {
		t.Errorf("'.' must be a literal without click target: %+v", res.Units[2])
	}
	if got := PlainText(res.Units); got != "The fast animal." {
		t.Errorf("PlainText = %q", got)
	}
}

func TestResolve_RoundTripWithoutCorrections(t *testing.T) {
	toks := []model.Token{
		{ID: 1, Position: 0, Text: "Olá", IsWord: true, WhitespaceAfter: "  "},
		{ID: 2, Position: 1, Text: ",", WhitespaceAfter: "\n\t"},
		{ID: 3, Position: 2, Text: "mundo", IsWord: true, ToBeNormalized: true},
		{ID: 4, Position: 3, Text: "!", WhitespaceAfter: "\n"},
	}
	store, err := tokens.NewStore(toks)
	if err != nil {
		t.Fatal(err)
	}

	res := Resolve(Input{Tokens: store, Corrections: correction.NewIndex()})
	if got := PlainText(res.Units); got != store.Text() {
		t.Errorf("round trip = %q, want %q", got, store.Text())
	}
}

func TestResolve_WhitespaceFromLastCoveredToken(t *testing.T) {
	toks := []model.Token{
		{ID: 1, Position: 0, Text: "a", IsWord: true, WhitespaceAfter: " "},
		{ID: 2, Position: 1, Text: "b", IsWord: true, WhitespaceAfter: "\n\n"},
		{ID: 3, Position: 2, Text: "c", IsWord: true},
	}
	store, _ := tokens.NewStore(toks)
	idx := spans(t, 3, model.CorrectionSpan{FirstIndex: 0, LastIndex: 1, ReplacementText: "x y "})

	res := Resolve(Input{Tokens: store, Corrections: idx})
	if got := PlainText(res.Units); got != "x y \n\nc" {
		t.Errorf("PlainText = %q", got)
	}
}

func TestResolve_CoverageSkip(t *testing.T) {
	store := words(t, "a", "b", "c", "d", "e", "f", "g", "h")
	idx := spans(t, store.Len(),
		model.CorrectionSpan{FirstIndex: 1, LastIndex: 3, ReplacementText: "X"},
		model.CorrectionSpan{FirstIndex: 5, LastIndex: 5, ReplacementText: "Y"},
		model.CorrectionSpan{FirstIndex: 6, LastIndex: 7, ReplacementText: "Z"},
	)

	res := Resolve(Input{Tokens: store, Corrections: idx})

	for _, s := range idx.Spans() {
		exact := 0
		for _, u := range res.Units {
			if u.From == s.FirstIndex && u.To == s.LastIndex {
				exact++
			}
			if u.From > s.FirstIndex && u.From <= s.LastIndex {
				t.Errorf("unit %+v starts inside span %+v", u, s)
			}
		}
		if exact != 1 {
			t.Errorf("span %+v produced %d units", s, exact)
		}
	}
}

func TestResolve_CandidateClass(t *testing.T) {
	toks := []model.Token{
		{ID: 1, Position: 0, Text: "plain", IsWord: true, WhitespaceAfter: " "},
		{ID: 2, Position: 1, Text: "flagged", IsWord: true, ToBeNormalized: true, WhitespaceAfter: " "},
		{ID: 3, Position: 2, Text: "exempt", IsWord: true, ToBeNormalized: true, Whitelisted: true, WhitespaceAfter: " "},
		{ID: 4, Position: 3, Text: "covered", IsWord: true, ToBeNormalized: true},
	}
	store, _ := tokens.NewStore(toks)
	idx := spans(t, 4, model.CorrectionSpan{FirstIndex: 3, LastIndex: 3, ReplacementText: "fixed"})

	res := Resolve(Input{Tokens: store, Corrections: idx})

	want := []bool{false, true, false, false}
	for i, u := range res.Units {
		if got := u.Has(model.ClassCandidate); got != want[i] {
			t.Errorf("unit %d (%q): candidate = %v, want %v", i, u.Text, got, want[i])
		}
	}
}

func TestResolve_SelectedAndHighlighted(t *testing.T) {
	store := words(t, "The", "quick", "brown", "fox")
	idx := spans(t, 4, model.CorrectionSpan{FirstIndex: 2, LastIndex: 3, ReplacementText: "red fox"})

	res := Resolve(Input{
		Tokens:      store,
		Corrections: idx,
		Selection:   selection.Range{Start: 1, End: 2, Set: true},
		Highlights:  PositionSet{2: 4, 3: 4},
	})

	if len(res.Units) != 3 {
		t.Fatalf("expected 3 units, got %v", texts(res.Units))
	}
	if res.Units[0].Has(model.ClassSelected) {
		t.Error("position 0 must not be selected")
	}
	if !res.Units[1].Has(model.ClassSelected) || !res.Units[2].Has(model.ClassSelected) {
		t.Error("units leading at 1 and 2 must be selected")
	}
	if !res.Units[2].Has(model.ClassHighlighted) || res.Units[2].Nonce != 4 {
		t.Errorf("corrected unit should be highlighted with nonce 4: %+v", res.Units[2])
	}
	if res.Units[1].Has(model.ClassHighlighted) {
		t.Error("unit at 1 is not highlighted")
	}
}

func TestResolve_SelectionScenario(t *testing.T) {
	store := words(t, "The", "quick", "brown", "fox")
	sel := selection.Transition(selection.State{}, selection.Click{Position: 1})
	sel = selection.Transition(sel, selection.Click{Position: 3, Multi: true})

	res := Resolve(Input{Tokens: store, Corrections: correction.NewIndex(), Selection: sel.Range})

	for i, want := range []bool{false, true, true, true} {
		if got := res.Units[i].Has(model.ClassSelected); got != want {
			t.Errorf("position %d selected = %v, want %v", i, got, want)
		}
	}
}

func TestResolve_ClampsSpanPastEnd(t *testing.T) {
	store := words(t, "a", "b", "c")
	idx := correction.NewIndex()
	if err := idx.Insert(model.CorrectionSpan{FirstIndex: 1, LastIndex: 9, ReplacementText: "Z"}); err != nil {
		t.Fatal(err)
	}

	res := Resolve(Input{Tokens: store, Corrections: idx})

	if got := texts(res.Units); !reflect.DeepEqual(got, []string{"a", "Z"}) {
		t.Errorf("units = %v", got)
	}
	if res.Units[1].To != 2 {
		t.Errorf("expected clamp to last position, got %+v", res.Units[1])
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Reason != correction.ReasonClamped {
		t.Errorf("expected clamp warning, got %+v", res.Warnings)
	}
}

func TestResolve_IsPure(t *testing.T) {
	store := words(t, "The", "quick", "brown", "fox", ".")
	idx := spans(t, 5, model.CorrectionSpan{FirstIndex: 1, LastIndex: 2, ReplacementText: "fast"})
	hover := 2
	in := Input{
		Tokens:      store,
		Corrections: idx,
		Selection:   selection.Single(3),
		Highlights:  PositionSet{1: 1},
		Hover:       &hover,
	}

	a, b := Resolve(in), Resolve(in)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs gave different output:\n%+v\n%+v", a, b)
	}
}

func TestResolve_EmptyDocument(t *testing.T) {
	res := Resolve(Input{})
	if len(res.Units) != 0 || len(res.Warnings) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestTaggedText(t *testing.T) {
	store := words(t, "I", "dont", "know", ".")
	idx := spans(t, 4, model.CorrectionSpan{FirstIndex: 1, LastIndex: 1, ReplacementText: "don't"})

	res := Resolve(Input{Tokens: store, Corrections: idx})
	if got, want := TaggedText(res.Units, store), "I <norm orig='dont'>don't</norm> know."; got != want {
		t.Errorf("TaggedText = %q, want %q", got, want)
	}
}
