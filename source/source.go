package source

import (
	"context"
	"errors"
	"time"
)

// Item is a candidate result produced by a provider's discovery phase.
// URL is the deduplication key and is compared byte-for-byte.
type Item struct {
	URL      string `json:"url"`
	SourceID string `json:"source_id"`
	Title    string `json:"title,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
	// Rank is the 1-based position in the provider's own result ordering.
	Rank int `json:"rank,omitempty"`
	// Payload carries provider-owned data from discovery into enrichment
	// so enrichment need not re-fetch. The engine never inspects it.
	Payload any `json:"-"`
}

// Enriched is an Item plus whatever metadata enrichment managed to attach.
// Nil means unknown, never zero.
type Enriched struct {
	Item
	PublishedAt *time.Time `json:"published_at,omitempty"`
	LikeCount   *int       `json:"like_count,omitempty"`
	ViewCount   *int       `json:"view_count,omitempty"`
}

// Provider is the plugin boundary: one implementation per content source.
// Implementations are stateless between runs.
type Provider interface {
	ID() string

	// Discover returns up to max candidate items for the token set,
	// treating tokens as an AND query. When the context is cancelled
	// mid-discovery the provider stops issuing requests and returns what
	// it already collected; that is a truncation, not an error.
	Discover(ctx context.Context, tokens []string, max int) ([]Item, error)

	// Enrich attaches metadata to items previously discovered by this
	// provider, returning a slice of the same length and order. It fails
	// with the context's error if cancelled mid-batch; any other per-item
	// failure degrades to missing metadata on that item.
	Enrich(ctx context.Context, items []Item) ([]Enriched, error)
}

// Registry holds configured providers in registration order with id lookup.
type Registry struct {
	order []Provider
	byID  map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{byID: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Provider) {
	if _, exists := r.byID[p.ID()]; exists {
		return
	}
	r.byID[p.ID()] = p
	r.order = append(r.order, p)
}

func (r *Registry) Get(id string) (Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.order))
	copy(out, r.order)
	return out
}

// IsAborted reports whether err stems from a cancelled or expired context.
func IsAborted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Unenriched wraps items without metadata, the fallback when a provider's
// enrichment fails.
func Unenriched(items []Item) []Enriched {
	out := make([]Enriched, len(items))
	for i, it := range items {
		out[i] = Enriched{Item: it}
	}
	return out
}
