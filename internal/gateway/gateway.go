// Package gateway is the client side of the remote correction store. The
// gateway is the source of truth: mutating calls return no data and callers
// refetch afterwards.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ppiankov/normalia/internal/model"
)

// Gateway defines the operations consumed by the overlay engine
type Gateway interface {
	// ListDocuments returns metadata of every document visible to the user
	ListDocuments(ctx context.Context) ([]model.DocumentMeta, error)

	// FetchDocument returns the tokens and document-level flags
	FetchDocument(ctx context.Context, id model.DocumentID) (*model.Document, error)

	// FetchCorrections returns the stored spans, unvalidated
	FetchCorrections(ctx context.Context, id model.DocumentID) ([]model.CorrectionSpan, error)

	// CreateCorrection stores or replaces a span
	CreateCorrection(ctx context.Context, id model.DocumentID, req CreateRequest) error

	// DeleteCorrection removes the span starting exactly at firstIndex
	DeleteCorrection(ctx context.Context, id model.DocumentID, firstIndex int) error

	// DeleteAllCorrections removes every span of the document
	DeleteAllCorrections(ctx context.Context, id model.DocumentID) error

	// ToggleExcluded inverts the toBeNormalized flag of a token
	ToggleExcluded(ctx context.Context, tokenID model.TokenID) error

	// ToggleFinalized inverts the document-level finalized flag
	ToggleFinalized(ctx context.Context, id model.DocumentID) error
}

// CreateRequest is the payload of CreateCorrection
type CreateRequest struct {
	FirstIndex      int
	LastIndex       int
	ReplacementText string
	ApplyEverywhere bool // Replicate across every occurrence in the corpus
}

// TransportError is any failed gateway round-trip: network failure,
// timeout, non-2xx status or an undecodable response. Authorization
// failures are transport errors too.
type TransportError struct {
	Op         string
	StatusCode int    // 0 when no response was received
	Message    string // Server-provided error message, if any
	RequestID  string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": transport failure"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the gateway rejected the session
func (e *TransportError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
