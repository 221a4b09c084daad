package aggregate

import (
	"context"
	"fmt"
	"sync"

	"techscout/source"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine orchestrates one aggregation run: parallel discovery across
// providers, first-seen URL dedup, parallel per-provider enrichment, and a
// size cap. Provider failures degrade; only cancellation crosses this
// boundary as an error, and a cancelled run returns no partial output.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

type discoverResult struct {
	providerID string
	items      []source.Item
	err        error
}

type enrichResult struct {
	providerID string
	originals  []source.Item
	enriched   []source.Enriched
	err        error
}

// Run returns at most maxTotal enriched items for the token set. Each
// provider is asked for an equal share ceil(maxTotal/len(providers)).
func (e *Engine) Run(ctx context.Context, tokens []string, providers []source.Provider, maxTotal int) ([]source.Enriched, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	if maxTotal <= 0 {
		return nil, fmt.Errorf("maxTotal must be positive, got %d", maxTotal)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation aborted: %w", err)
	}

	logger := e.logger.With(zap.String("run_id", uuid.NewString()))
	perProvider := (maxTotal + len(providers) - 1) / len(providers)

	// Discovery fan-out. Every task owns its own result slot; the shared
	// pool is only touched after the join below.
	discoveries := make([]discoverResult, len(providers))
	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p source.Provider) {
			defer wg.Done()
			items, err := p.Discover(ctx, tokens, perProvider)
			discoveries[i] = discoverResult{providerID: p.ID(), items: items, err: err}
		}(i, p)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation aborted during discovery: %w", err)
	}

	byID := make(map[string]source.Provider, len(providers))
	for _, p := range providers {
		byID[p.ID()] = p
	}

	// Merge while enforcing URL uniqueness: first occurrence wins.
	seen := make(map[string]struct{})
	var pool []source.Item
	for _, res := range discoveries {
		if res.err != nil {
			if source.IsAborted(res.err) {
				return nil, fmt.Errorf("aggregation aborted during discovery: %w", res.err)
			}
			logger.Warn("discovery failed, provider contributes nothing",
				zap.String("provider", res.providerID),
				zap.Error(res.err))
			continue
		}
		for _, it := range res.items {
			if _, dup := seen[it.URL]; dup {
				continue
			}
			seen[it.URL] = struct{}{}
			pool = append(pool, it)
		}
	}

	// Partition surviving items by originating provider. An id that no
	// longer resolves means a misbehaving provider; drop the item.
	groups := make(map[string][]source.Item)
	for _, it := range pool {
		if _, ok := byID[it.SourceID]; !ok {
			logger.Warn("dropping item from unknown source",
				zap.String("source", it.SourceID),
				zap.String("url", it.URL))
			continue
		}
		groups[it.SourceID] = append(groups[it.SourceID], it)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation aborted: %w", err)
	}

	// Enrichment fan-out, one task per non-empty group.
	enrichments := make([]enrichResult, len(groups))
	idx := 0
	for id, items := range groups {
		i := idx
		idx++
		wg.Add(1)
		go func(i int, p source.Provider, items []source.Item) {
			defer wg.Done()
			enriched, err := p.Enrich(ctx, items)
			enrichments[i] = enrichResult{providerID: p.ID(), originals: items, enriched: enriched, err: err}
		}(i, byID[id], items)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation aborted during enrichment: %w", err)
	}

	var out []source.Enriched
	for _, res := range enrichments {
		switch {
		case res.err == nil && len(res.enriched) == len(res.originals):
			out = append(out, res.enriched...)
		case res.err != nil && source.IsAborted(res.err):
			return nil, fmt.Errorf("aggregation aborted during enrichment: %w", res.err)
		case res.err != nil:
			logger.Warn("enrichment failed, keeping items unenriched",
				zap.String("provider", res.providerID),
				zap.Error(res.err))
			out = append(out, source.Unenriched(res.originals)...)
		default:
			logger.Warn("enrichment returned wrong item count, keeping items unenriched",
				zap.String("provider", res.providerID),
				zap.Int("want", len(res.originals)),
				zap.Int("got", len(res.enriched)))
			out = append(out, source.Unenriched(res.originals)...)
		}
	}

	if len(out) > maxTotal {
		out = out[:maxTotal]
	}

	logger.Info("aggregation complete",
		zap.Int("items", len(out)),
		zap.Int("providers", len(providers)))
	return out, nil
}
