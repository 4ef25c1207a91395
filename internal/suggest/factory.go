package suggest

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/normalia/internal/model"
)

// NewProvider creates the configured provider, wrapped in a memory store
// when cfg.CacheTTL is positive. An empty provider name disables
// suggestions and returns nil.
func NewProvider(cfg model.SuggestConfig) (Provider, error) {
	var p Provider
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		op, err := NewOpenAIProvider(cfg)
		if err != nil {
			return nil, err
		}
		p = op
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown suggest provider: %s (supported: openai)", cfg.Provider)
	}

	if cfg.CacheTTL > 0 {
		p = NewCachedProvider(p, NewStore(cfg.CacheTTL, time.Minute), cfg.CacheTTL)
	}
	return p, nil
}
