package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ppiankov/normalia/internal/gateway"
	"github.com/ppiankov/normalia/internal/model"
)

// Workspace tracks which document is active. Opening a document tears the
// previous session down and builds a fresh one; refetches that resolve for
// a session that is no longer current are discarded.
type Workspace struct {
	gw   gateway.Gateway
	opts Options

	generation atomic.Uint64

	mu      sync.Mutex
	current *Session
}

// NewWorkspace creates an empty workspace
func NewWorkspace(gw gateway.Gateway, opts Options) *Workspace {
	return &Workspace{gw: gw, opts: opts}
}

// Open switches to document id and loads it. The new session is returned
// even when the load fails so the caller can retry Refresh.
func (w *Workspace) Open(ctx context.Context, id model.DocumentID) (*Session, error) {
	w.mu.Lock()
	gen := w.generation.Add(1)
	s := newSession(w.gw, id, w.opts, func() bool {
		return w.generation.Load() == gen
	})
	prev := w.current
	w.current = s
	w.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	return s, s.Refresh(ctx)
}

// Active returns the current session, or nil
func (w *Workspace) Active() *Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close tears down the active session
func (w *Workspace) Close() {
	w.mu.Lock()
	w.generation.Add(1)
	prev := w.current
	w.current = nil
	w.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}
