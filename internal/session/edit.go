package session

import (
	"context"
	"fmt"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/gateway"
	"github.com/ppiankov/normalia/internal/model"
)

// CreateOrReplace stores a correction over [FirstIndex, LastIndex]. An
// empty replacement is routed to Delete(FirstIndex). ApplyEverywhere is
// only sent after the Confirmer approves it.
func (s *Session) CreateOrReplace(ctx context.Context, req gateway.CreateRequest) error {
	if err := s.usable(); err != nil {
		return err
	}
	ctx = s.ctx(ctx)

	if req.FirstIndex > req.LastIndex {
		return correction.ValidateCreate(req.FirstIndex, req.LastIndex, req.ReplacementText)
	}
	if req.ReplacementText == "" {
		return s.Delete(ctx, req.FirstIndex)
	}
	if err := correction.ValidateCreate(req.FirstIndex, req.LastIndex, req.ReplacementText); err != nil {
		return err
	}

	s.mu.Lock()
	store := s.store
	s.mu.Unlock()
	if store != nil && req.LastIndex >= store.Len() {
		return &correction.ValidationError{
			Op:     "create",
			Reason: fmt.Sprintf("last index %d is past the end of the document (%d tokens)", req.LastIndex, store.Len()),
		}
	}

	if req.ApplyEverywhere {
		if s.confirm == nil {
			return ErrNotConfirmed
		}
		ok, err := s.confirm.ConfirmApplyEverywhere(ctx, ConfirmRequest{
			DocumentID:      s.id,
			FirstIndex:      req.FirstIndex,
			LastIndex:       req.LastIndex,
			OriginalText:    store.Slice(req.FirstIndex, req.LastIndex),
			ReplacementText: req.ReplacementText,
		})
		if err != nil {
			return fmt.Errorf("confirm apply-everywhere: %w", err)
		}
		if !ok {
			return ErrNotConfirmed
		}
	}

	if err := s.gw.CreateCorrection(ctx, s.id, req); err != nil {
		return err
	}
	return s.refetch(ctx, "create")
}

// Delete removes the span whose first index is exactly index. Positions
// inside a span are rejected; use CoveringStart to find the span start.
func (s *Session) Delete(ctx context.Context, index int) error {
	if err := s.usable(); err != nil {
		return err
	}
	ctx = s.ctx(ctx)

	if index < 0 {
		return &correction.ValidationError{Op: "delete", Reason: fmt.Sprintf("index %d is negative", index)}
	}
	s.mu.Lock()
	covering, covered := s.index.Covering(index)
	s.mu.Unlock()
	if covered && covering.FirstIndex != index {
		return &correction.ValidationError{
			Op:     "delete",
			Reason: fmt.Sprintf("index %d is inside the span starting at %d", index, covering.FirstIndex),
		}
	}

	if err := s.gw.DeleteCorrection(ctx, s.id, index); err != nil {
		return err
	}
	return s.refetch(ctx, "delete")
}

// CoveringStart returns the first index of the span covering pos
func (s *Session) CoveringStart(pos int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	span, ok := s.index.Covering(pos)
	return span.FirstIndex, ok
}

// DeleteAll removes every correction of the document
func (s *Session) DeleteAll(ctx context.Context) error {
	if err := s.usable(); err != nil {
		return err
	}
	ctx = s.ctx(ctx)

	if err := s.gw.DeleteAllCorrections(ctx, s.id); err != nil {
		return err
	}
	return s.refetch(ctx, "delete all")
}

// ToggleExcluded inverts the toBeNormalized flag of a token, independent of
// any span over it.
func (s *Session) ToggleExcluded(ctx context.Context, tokenID model.TokenID) error {
	if err := s.usable(); err != nil {
		return err
	}
	ctx = s.ctx(ctx)

	s.mu.Lock()
	store := s.store
	s.mu.Unlock()
	if store != nil {
		if _, ok := store.ByID(tokenID); !ok {
			return &correction.ValidationError{Op: "toggle excluded", Reason: fmt.Sprintf("token %d is not in this document", tokenID)}
		}
	}

	if err := s.gw.ToggleExcluded(ctx, tokenID); err != nil {
		return err
	}
	return s.refetch(ctx, "toggle excluded")
}

// ToggleExcludedAt toggles the token at position pos
func (s *Session) ToggleExcludedAt(ctx context.Context, pos int) error {
	s.mu.Lock()
	tok, ok := s.store.At(pos)
	s.mu.Unlock()
	if !ok {
		return &correction.ValidationError{Op: "toggle excluded", Reason: fmt.Sprintf("no token at position %d", pos)}
	}
	return s.ToggleExcluded(ctx, tok.ID)
}

// ToggleFinalized inverts the document-level finalized flag
func (s *Session) ToggleFinalized(ctx context.Context) error {
	if err := s.usable(); err != nil {
		return err
	}
	ctx = s.ctx(ctx)

	if err := s.gw.ToggleFinalized(ctx, s.id); err != nil {
		return err
	}
	return s.refetch(ctx, "toggle finalized")
}
