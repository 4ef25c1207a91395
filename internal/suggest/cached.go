package suggest

import (
	"context"
	"time"

	"github.com/ppiankov/normalia/internal/logging"
)

// CachedProvider memoizes another provider's answers
type CachedProvider struct {
	inner Provider
	store *Store
	ttl   time.Duration
}

// NewCachedProvider wraps inner with store
func NewCachedProvider(inner Provider, store *Store, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, store: store, ttl: ttl}
}

// Name returns the wrapped provider name
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// Suggest returns a cached answer when one exists. Errors are never cached.
func (p *CachedProvider) Suggest(ctx context.Context, req Request) (*Response, error) {
	if resp, ok := p.store.Get(p.inner.Name(), req); ok {
		logging.FromContext(ctx).Debug("suggestion cache hit", "provider", p.inner.Name(), "text", req.Text)
		return resp, nil
	}

	resp, err := p.inner.Suggest(ctx, req)
	if err != nil {
		return nil, err
	}

	p.store.Put(p.inner.Name(), req, resp, p.ttl)
	return resp, nil
}
