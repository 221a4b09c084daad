package source

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const rssID = "rss"

// RSS discovers items from a configured set of RSS/Atom feeds. Feeds are
// not queryable, so discovery pulls each feed and filters locally: an item
// survives only when its title or description contains every token. The
// feed entry rides along as payload, so enrichment is a pure projection.
type RSS struct {
	feeds   []string
	fetcher *Fetcher
	parser  *gofeed.Parser
	logger  *zap.Logger
}

func NewRSS(feeds []string, fetcher *Fetcher, logger *zap.Logger) *RSS {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RSS{
		feeds:   feeds,
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		logger:  logger,
	}
}

func (r *RSS) ID() string { return rssID }

func (r *RSS) Discover(ctx context.Context, tokens []string, max int) ([]Item, error) {
	var items []Item
	rank := 0
	for i, feedURL := range r.feeds {
		if ctx.Err() != nil {
			return items, nil
		}
		if i > 0 {
			if err := r.fetcher.Delay(ctx); err != nil {
				return items, nil
			}
		}

		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			if IsAborted(err) {
				return items, nil
			}
			// a dead feed only costs its own results
			r.logger.Warn("feed fetch failed", zap.String("feed", feedURL), zap.Error(err))
			continue
		}

		for _, entry := range feed.Items {
			if entry.Link == "" {
				continue
			}
			if !matchesAll(entry.Title+" "+entry.Description, tokens) {
				continue
			}
			rank++
			items = append(items, Item{
				URL:      strings.TrimSpace(entry.Link),
				SourceID: rssID,
				Title:    strings.TrimSpace(entry.Title),
				Snippet:  snippet(entry.Description, 200),
				Rank:     rank,
				Payload:  entry,
			})
			if len(items) >= max {
				return items, nil
			}
		}
	}
	return items, nil
}

func (r *RSS) Enrich(ctx context.Context, items []Item) ([]Enriched, error) {
	out := make([]Enriched, 0, len(items))
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := Enriched{Item: it}
		if entry, ok := it.Payload.(*gofeed.Item); ok {
			if entry.PublishedParsed != nil {
				ts := *entry.PublishedParsed
				e.PublishedAt = &ts
			} else if entry.UpdatedParsed != nil {
				ts := *entry.UpdatedParsed
				e.PublishedAt = &ts
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func matchesAll(text string, tokens []string) bool {
	text = strings.ToLower(text)
	for _, tok := range tokens {
		if !strings.Contains(text, strings.ToLower(tok)) {
			return false
		}
	}
	return true
}
