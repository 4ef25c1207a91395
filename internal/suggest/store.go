package suggest

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store memoizes provider answers per request in memory
type Store struct {
	items *gocache.Cache
}

// NewStore creates a store whose entries live for ttl. Expired entries are
// swept every sweep interval; zero disables sweeping and entries are only
// dropped when read after expiry.
func NewStore(ttl, sweep time.Duration) *Store {
	return &Store{items: gocache.New(ttl, sweep)}
}

// Get returns a copy of the stored answer for req, marked as cached
func (s *Store) Get(provider string, req Request) (*Response, bool) {
	v, ok := s.items.Get(storeKey(provider, req))
	if !ok {
		return nil, false
	}
	resp := *v.(*Response)
	resp.Candidates = append([]string(nil), resp.Candidates...)
	resp.Cached = true
	return &resp, true
}

// Put stores a copy of resp for ttl. A zero ttl uses the store default.
func (s *Store) Put(provider string, req Request, resp *Response, ttl time.Duration) {
	stored := *resp
	stored.Candidates = append([]string(nil), resp.Candidates...)
	stored.Cached = false
	s.items.Set(storeKey(provider, req), &stored, ttl)
}

// Forget drops the answer for req
func (s *Store) Forget(provider string, req Request) {
	s.items.Delete(storeKey(provider, req))
}

// Clear drops every answer
func (s *Store) Clear() {
	s.items.Flush()
}

// Len returns the number of unexpired answers
func (s *Store) Len() int {
	return s.items.ItemCount()
}

// storeKey hashes every request field that changes the answer. Fields are
// NUL separated so ("ab", "c") and ("a", "bc") do not collide.
func storeKey(provider string, req Request) string {
	parts := []string{
		provider, req.Text, req.Before, req.After,
		strings.Join(req.Known, "\x1f"), strconv.Itoa(req.max()),
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "suggest:v1:" + hex.EncodeToString(hash[:])
}
