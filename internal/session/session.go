// Package session owns the overlay state of one open document and
// orchestrates correction edits against the gateway.
//
// Edits are fire-and-refetch: nothing is patched locally, and the state
// shown is always the one returned by the latest completed full refetch.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ppiankov/normalia/internal/animate"
	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/gateway"
	"github.com/ppiankov/normalia/internal/logging"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/resolve"
	"github.com/ppiankov/normalia/internal/selection"
	"github.com/ppiankov/normalia/internal/tokens"
)

var (
	// ErrStale means a refetch resolved after the user left the document
	ErrStale = errors.New("document is no longer active")
	// ErrNotConfirmed means an apply-everywhere edit was declined
	ErrNotConfirmed = errors.New("apply-everywhere not confirmed")
	// ErrClosed means the session was torn down
	ErrClosed = errors.New("session closed")
	// ErrNotLoaded means no successful fetch has completed yet
	ErrNotLoaded = errors.New("document not loaded")
)

// Options configures a session
type Options struct {
	Confirmer Confirmer        // Required for apply-everywhere edits
	Animation []animate.Option // Highlight window and sweep settings
	OnChange  func()           // Called after a refetch lands or a highlight expires
}

// Session holds TokenStore, CorrectionIndex, selection and highlights for
// exactly one document. Switching documents means a new Session.
type Session struct {
	id       model.DocumentID
	gw       gateway.Gateway
	confirm  Confirmer
	onChange func()
	isActive func() bool

	mu       sync.Mutex
	meta     model.DocumentMeta
	store    *tokens.Store
	index    *correction.Index
	warnings []correction.IntegrityWarning
	hover    *int
	loaded   bool
	closed   bool

	selection *selection.Controller
	animator  *animate.Animator
}

// New creates a standalone session. It stays active until Close.
func New(gw gateway.Gateway, id model.DocumentID, opts Options) *Session {
	return newSession(gw, id, opts, nil)
}

func newSession(gw gateway.Gateway, id model.DocumentID, opts Options, isActive func() bool) *Session {
	s := &Session{
		id:        id,
		gw:        gw,
		confirm:   opts.Confirmer,
		onChange:  opts.OnChange,
		isActive:  isActive,
		index:     correction.NewIndex(),
		selection: selection.NewController(),
	}

	animOpts := append([]animate.Option{}, opts.Animation...)
	animOpts = append(animOpts, animate.WithOnExpire(func(int) { s.notify() }))
	s.animator = animate.New(animOpts...)
	return s
}

// ID returns the document id
func (s *Session) ID() model.DocumentID {
	return s.id
}

func (s *Session) ctx(ctx context.Context) context.Context {
	return logging.WithDocumentID(ctx, int64(s.id))
}

// Refresh fetches the document and its corrections and replaces the
// session state wholesale. The first load establishes the baseline;
// later loads highlight whatever changed.
func (s *Session) Refresh(ctx context.Context) error {
	ctx = s.ctx(ctx)

	doc, err := s.gw.FetchDocument(ctx, s.id)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	spans, err := s.gw.FetchCorrections(ctx, s.id)
	if err != nil {
		return fmt.Errorf("fetch corrections: %w", err)
	}

	store, err := tokens.NewStore(doc.Tokens)
	if err != nil {
		return &gateway.TransportError{Op: "fetch_document", Err: fmt.Errorf("invalid document: %w", err)}
	}
	idx, warnings := correction.Build(spans, store.Len())
	for _, w := range warnings {
		logging.IntegrityWarning(ctx, w.FirstIndex, w.LastIndex, w.Reason)
	}

	s.mu.Lock()
	if s.closed || (s.isActive != nil && !s.isActive()) {
		s.mu.Unlock()
		logging.StaleDiscarded(ctx)
		return ErrStale
	}

	prev, wasLoaded := s.index, s.loaded
	s.meta = doc.Meta
	s.store = store
	s.index = idx
	s.warnings = warnings
	s.loaded = true
	if wasLoaded {
		s.animator.Apply(prev, idx)
	}
	if r := s.selection.Range(); r.Set && r.End >= store.Len() {
		s.selection.Reset()
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// refetch runs after a successful mutation. A stale refetch is not an
// error for the mutation: the edit landed, there is just nothing to show.
func (s *Session) refetch(ctx context.Context, op string) error {
	if err := s.Refresh(ctx); err != nil {
		if errors.Is(err, ErrStale) {
			return nil
		}
		return fmt.Errorf("refetch after %s: %w", op, err)
	}
	return nil
}

func (s *Session) usable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close tears the session down: pending highlights are cleared and the
// selection is dropped. Refetches still in flight are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.hover = nil
	s.mu.Unlock()

	s.animator.Stop()
	s.selection.Reset()
}

func (s *Session) notify() {
	if s.onChange == nil {
		return
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.onChange()
	}
}

// Meta returns the document-level attributes of the last refetch
func (s *Session) Meta() model.DocumentMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Tokens returns the current token store
func (s *Session) Tokens() *tokens.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Corrections returns the current correction index
func (s *Session) Corrections() *correction.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Warnings returns integrity warnings raised by the last refetch
func (s *Session) Warnings() []correction.IntegrityWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]correction.IntegrityWarning(nil), s.warnings...)
}

// Highlights returns the live change highlights
func (s *Session) Highlights() []animate.Highlight {
	return s.animator.Snapshot()
}

// Loaded reports whether a refetch has completed
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Render resolves the corrected view
func (s *Session) Render() resolve.Result {
	s.mu.Lock()
	in := resolve.Input{
		Tokens:      s.store,
		Corrections: s.index,
		Selection:   s.selection.Range(),
		Highlights:  s.animator,
		Hover:       s.hover,
	}
	s.mu.Unlock()

	res := resolve.Resolve(in)
	for _, w := range res.Warnings {
		logging.IntegrityWarning(s.ctx(context.Background()), w.FirstIndex, w.LastIndex, w.Reason)
	}
	return res
}
