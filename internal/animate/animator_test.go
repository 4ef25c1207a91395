package animate

import (
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/model"
)

func index(t *testing.T, spans ...model.CorrectionSpan) *correction.Index {
	t.Helper()
	idx, warnings := correction.Build(spans, -1)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return idx
}

func span(first, last int, text string) model.CorrectionSpan {
	return model.CorrectionSpan{FirstIndex: first, LastIndex: last, ReplacementText: text}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  []model.CorrectionSpan
		next []model.CorrectionSpan
		want []int
	}{
		{"added", nil, []model.CorrectionSpan{span(2, 2, "X")}, []int{2}},
		{"removed", []model.CorrectionSpan{span(1, 3, "a")}, nil, []int{1, 2, 3}},
		{"unchanged", []model.CorrectionSpan{span(1, 3, "a")}, []model.CorrectionSpan{span(1, 3, "a")}, []int{}},
		{"text changed", []model.CorrectionSpan{span(4, 5, "a")}, []model.CorrectionSpan{span(4, 5, "b")}, []int{4, 5}},
		{"extended", []model.CorrectionSpan{span(4, 4, "a")}, []model.CorrectionSpan{span(4, 6, "a")}, []int{4, 5, 6}},
		{"shrunk uses new interval", []model.CorrectionSpan{span(4, 6, "a")}, []model.CorrectionSpan{span(4, 4, "a")}, []int{4}},
		{
			"mixed",
			[]model.CorrectionSpan{span(0, 0, "keep"), span(2, 3, "gone")},
			[]model.CorrectionSpan{span(0, 0, "keep"), span(7, 7, "new")},
			[]int{2, 3, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(index(t, tt.old...), index(t, tt.next...))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiff_NilSnapshots(t *testing.T) {
	if got := Diff(nil, nil); len(got) != 0 {
		t.Errorf("expected no positions, got %v", got)
	}
	if got := Diff(nil, index(t, span(1, 2, "x"))); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestAnimator_DefaultWindowExpires(t *testing.T) {
	a := New()
	defer a.Stop()

	a.Apply(correction.NewIndex(), index(t, span(2, 2, "X")))

	snap := a.Snapshot()
	if len(snap) != 1 || snap[0].Position != 2 {
		t.Fatalf("expected highlight set {2}, got %+v", snap)
	}

	time.Sleep(model.HighlightWindow + 50*time.Millisecond)

	if a.Len() != 0 {
		t.Errorf("expected empty highlight set after window, got %+v", a.Snapshot())
	}
}

func TestAnimator_RetriggerRestartsWindow(t *testing.T) {
	a := New(WithWindow(200*time.Millisecond), WithSweepInterval(10*time.Millisecond))
	defer a.Stop()

	a.Trigger([]int{5})
	first, _ := a.Lookup(5)

	time.Sleep(120 * time.Millisecond)
	a.Trigger([]int{5})
	time.Sleep(120 * time.Millisecond)

	nonce, ok := a.Lookup(5)
	if !ok {
		t.Fatal("re-triggered position expired on its original deadline")
	}
	if nonce != first+1 {
		t.Errorf("expected nonce %d, got %d", first+1, nonce)
	}
}

func TestAnimator_PerPositionExpiry(t *testing.T) {
	a := New(WithWindow(150*time.Millisecond), WithSweepInterval(10*time.Millisecond))
	defer a.Stop()

	a.Trigger([]int{1})
	time.Sleep(100 * time.Millisecond)
	a.Trigger([]int{2})
	time.Sleep(90 * time.Millisecond)

	if a.Highlighted(1) {
		t.Error("position 1 should have expired independently")
	}
	if !a.Highlighted(2) {
		t.Error("position 2 should still be highlighted")
	}
}

func TestAnimator_OnExpireCallback(t *testing.T) {
	expired := make(chan int, 4)
	a := New(
		WithWindow(30*time.Millisecond),
		WithSweepInterval(5*time.Millisecond),
		WithOnExpire(func(pos int) { expired <- pos }),
	)
	defer a.Stop()

	a.Trigger([]int{3})

	select {
	case pos := <-expired:
		if pos != 3 {
			t.Errorf("expected position 3, got %d", pos)
		}
	case <-time.After(time.Second):
		t.Fatal("expiry callback not called")
	}
}

func TestAnimator_StopClearsEverything(t *testing.T) {
	called := make(chan int, 4)
	a := New(
		WithWindow(30*time.Millisecond),
		WithSweepInterval(5*time.Millisecond),
		WithOnExpire(func(pos int) { called <- pos }),
	)

	a.Trigger([]int{1, 2, 3})
	a.Stop()

	if a.Len() != 0 {
		t.Errorf("expected no highlights after Stop, got %d", a.Len())
	}

	a.Trigger([]int{4})
	if a.Highlighted(4) {
		t.Error("stopped animator must ignore triggers")
	}

	select {
	case pos := <-called:
		t.Errorf("callback ran after Stop for %d", pos)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestAnimator_StopEndsSweepLoop(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 50; i++ {
		a := New(WithSweepInterval(time.Millisecond))
		a.Trigger([]int{i})
		a.Stop()
		a.Stop()
	}

	// A joined loop may still be returning when Stop comes back.
	after := runtime.NumGoroutine()
	for deadline := time.Now().Add(time.Second); after > before+2 && time.Now().Before(deadline); {
		time.Sleep(5 * time.Millisecond)
		after = runtime.NumGoroutine()
	}
	if after > before+2 {
		t.Errorf("expected sweep goroutines to exit, goroutines before=%d after=%d", before, after)
	}
}
