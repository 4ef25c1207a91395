package session

import (
	"context"

	"github.com/ppiankov/normalia/internal/model"
)

// ConfirmRequest describes an apply-everywhere edit awaiting confirmation
type ConfirmRequest struct {
	DocumentID      model.DocumentID
	FirstIndex      int
	LastIndex       int
	OriginalText    string // Text being replaced in every occurrence
	ReplacementText string
}

// Confirmer asks the user to approve an irreversible, corpus-wide edit
type Confirmer interface {
	ConfirmApplyEverywhere(ctx context.Context, req ConfirmRequest) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, req ConfirmRequest) (bool, error)

// ConfirmApplyEverywhere implements Confirmer
func (f ConfirmFunc) ConfirmApplyEverywhere(ctx context.Context, req ConfirmRequest) (bool, error) {
	return f(ctx, req)
}
