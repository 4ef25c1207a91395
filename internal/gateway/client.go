package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/logging"
	"github.com/ppiankov/normalia/internal/model"
)

const maxResponseBytes = 16 << 20

// Client talks to the gateway over HTTP/JSON. Calls are single attempts:
// a failure is returned to the caller and never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	limiter    *rate.Limiter
}

var _ Gateway = (*Client)(nil)

// NewClient creates a gateway client from configuration
func NewClient(cfg model.GatewayConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
			Transport: &http.Transport{
				Proxy: newProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
	}, nil
}

// ListDocuments implements Gateway
func (c *Client) ListDocuments(ctx context.Context) ([]model.DocumentMeta, error) {
	var wire wireDocumentList
	if err := c.do(ctx, "list_documents", http.MethodGet, "/texts/", nil, &wire); err != nil {
		return nil, err
	}

	metas := make([]model.DocumentMeta, len(wire.TextsData))
	for i, m := range wire.TextsData {
		metas[i] = m.toModel()
	}
	return metas, nil
}

// FetchDocument implements Gateway
func (c *Client) FetchDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	var wire wireDocument
	if err := c.do(ctx, "fetch_document", http.MethodGet, fmt.Sprintf("/texts/%d", id), nil, &wire); err != nil {
		return nil, err
	}
	return wire.toModel(), nil
}

// FetchCorrections implements Gateway
func (c *Client) FetchCorrections(ctx context.Context, id model.DocumentID) ([]model.CorrectionSpan, error) {
	var wire map[string]wireCorrection
	if err := c.do(ctx, "fetch_corrections", http.MethodGet, fmt.Sprintf("/texts/%d/normalizations", id), nil, &wire); err != nil {
		return nil, err
	}

	spans, err := correctionsToModel(wire)
	if err != nil {
		return nil, &TransportError{Op: "fetch_corrections", Err: err}
	}
	return spans, nil
}

// CreateCorrection implements Gateway
func (c *Client) CreateCorrection(ctx context.Context, id model.DocumentID, req CreateRequest) error {
	if err := correction.ValidateCreate(req.FirstIndex, req.LastIndex, req.ReplacementText); err != nil {
		return err
	}
	body := wireCreateCorrection{
		FirstIndex:    req.FirstIndex,
		LastIndex:     req.LastIndex,
		NewToken:      req.ReplacementText,
		SuggestForAll: req.ApplyEverywhere,
	}
	return c.do(ctx, "create_correction", http.MethodPost, fmt.Sprintf("/texts/%d/normalizations", id), body, nil)
}

// DeleteCorrection implements Gateway
func (c *Client) DeleteCorrection(ctx context.Context, id model.DocumentID, firstIndex int) error {
	body := wireDeleteCorrection{WordIndex: firstIndex}
	return c.do(ctx, "delete_correction", http.MethodDelete, fmt.Sprintf("/texts/%d/normalizations", id), body, nil)
}

// DeleteAllCorrections implements Gateway
func (c *Client) DeleteAllCorrections(ctx context.Context, id model.DocumentID) error {
	return c.do(ctx, "delete_all_corrections", http.MethodDelete, fmt.Sprintf("/texts/%d/normalizations/all", id), nil, nil)
}

// ToggleExcluded implements Gateway
func (c *Client) ToggleExcluded(ctx context.Context, tokenID model.TokenID) error {
	body := wireToggleExcluded{TokenID: int64(tokenID)}
	return c.do(ctx, "toggle_excluded", http.MethodPatch, fmt.Sprintf("/tokens/%d/suggestions/toggle", tokenID), body, nil)
}

// ToggleFinalized implements Gateway
func (c *Client) ToggleFinalized(ctx context.Context, id model.DocumentID) error {
	return c.do(ctx, "toggle_finalized", http.MethodPatch, fmt.Sprintf("/texts/%d/normalizations", id), nil, nil)
}

// do performs one round-trip. Every failure comes back as *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	requestID := uuid.NewString()
	start := time.Now()
	status := 0
	defer func() {
		logging.GatewayCall(ctx, op, method, path, status, requestID, time.Since(start), err)
	}()

	fail := func(cause error) error {
		return &TransportError{Op: op, StatusCode: status, RequestID: requestID, Err: cause}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail(fmt.Errorf("rate limit: %w", err))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail(fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := &TransportError{Op: op, StatusCode: status, RequestID: requestID}
		var we wireError
		if json.Unmarshal(data, &we) == nil {
			terr.Message = we.Error
			if terr.Message == "" {
				terr.Message = we.Message
			}
		}
		return terr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fail(fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}
