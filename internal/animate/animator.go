// Package animate turns correction index changes into short-lived,
// per-position highlights.
package animate

import (
	"sort"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/model"
)

// Highlight is one entry of the highlight set
type Highlight struct {
	Position  int       `json:"position"`
	Nonce     uint64    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Diff returns the sorted positions affected by moving from old to next:
// the full interval of every span that is new or changed in next, plus the
// old interval of every span that disappeared.
func Diff(old, next *correction.Index) []int {
	affected := make(map[int]struct{})
	addRange := func(from, to int) {
		for p := from; p <= to; p++ {
			affected[p] = struct{}{}
		}
	}

	for _, span := range next.Spans() {
		prev, ok := old.Get(span.FirstIndex)
		if !ok || prev.LastIndex != span.LastIndex || prev.ReplacementText != span.ReplacementText {
			addRange(span.FirstIndex, span.LastIndex)
		}
	}
	for _, span := range old.Spans() {
		if _, ok := next.Get(span.FirstIndex); !ok {
			addRange(span.FirstIndex, span.LastIndex)
		}
	}

	positions := make([]int, 0, len(affected))
	for p := range affected {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	return positions
}

// Animator owns the highlight set of one open document. Each position
// expires on its own; re-triggering a position restarts its window and
// bumps its nonce.
type Animator struct {
	mu       sync.Mutex
	window   time.Duration
	sweep    time.Duration
	entries  *gocache.Cache
	nonces   map[int]uint64
	onExpire func(pos int)
	closed   bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// Option configures an Animator
type Option func(*Animator)

// WithWindow overrides the highlight window
func WithWindow(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.window = d
		}
	}
}

// WithSweepInterval sets how often expired entries are swept
func WithSweepInterval(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.sweep = d
		}
	}
}

// WithOnExpire registers a callback run when a position's highlight is swept
func WithOnExpire(fn func(pos int)) Option {
	return func(a *Animator) {
		a.onExpire = fn
	}
}

// New creates an animator
func New(opts ...Option) *Animator {
	a := &Animator{
		window: model.HighlightWindow,
		sweep:  50 * time.Millisecond,
		nonces: make(map[int]uint64),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	// No go-cache janitor; the sweep loop below is owned and joined by Stop.
	a.entries = gocache.New(a.window, 0)
	a.entries.OnEvicted(a.evicted)

	a.wg.Add(1)
	go a.sweepLoop()
	return a
}

func (a *Animator) sweepLoop() {
	defer a.wg.Done()
	ticker := time.NewTicker(a.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.entries.DeleteExpired()
		}
	}
}

// Apply diffs two index snapshots and highlights the affected positions
func (a *Animator) Apply(old, next *correction.Index) []int {
	positions := Diff(old, next)
	a.Trigger(positions)
	return positions
}

// Trigger (re)starts the highlight of every given position
func (a *Animator) Trigger(positions []int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	now := time.Now()
	for _, pos := range positions {
		a.nonces[pos]++
		a.entries.Set(key(pos), Highlight{
			Position:  pos,
			Nonce:     a.nonces[pos],
			ExpiresAt: now.Add(a.window),
		}, a.window)
	}
}

// Lookup returns the nonce of pos if it is currently highlighted
func (a *Animator) Lookup(pos int) (uint64, bool) {
	v, ok := a.entries.Get(key(pos))
	if !ok {
		return 0, false
	}
	return v.(Highlight).Nonce, true
}

// Highlighted reports whether pos is currently highlighted
func (a *Animator) Highlighted(pos int) bool {
	_, ok := a.Lookup(pos)
	return ok
}

// Snapshot returns the live highlights ordered by position
func (a *Animator) Snapshot() []Highlight {
	items := a.entries.Items()
	out := make([]Highlight, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(Highlight))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Len returns the number of live highlights
func (a *Animator) Len() int {
	return len(a.entries.Items())
}

// Stop ends the sweep loop and clears every pending highlight. No callbacks
// run after it returns. Calling Stop twice is a no-op.
func (a *Animator) Stop() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	// evicted takes a.mu, so the loop is joined without holding it.
	close(a.done)
	a.wg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries.Flush()
	a.nonces = make(map[int]uint64)
}

func (a *Animator) evicted(k string, _ interface{}) {
	pos, err := strconv.Atoi(k)
	if err != nil {
		return
	}

	a.mu.Lock()
	closed, fn := a.closed, a.onExpire
	a.mu.Unlock()

	if !closed && fn != nil {
		fn(pos)
	}
}

func key(pos int) string {
	return strconv.Itoa(pos)
}
