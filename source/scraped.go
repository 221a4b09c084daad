package source

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ScrapedSite covers sources without a usable search API. Discovery goes
// through a site-restricted SERP query; enrichment fetches each article
// page and reads metadata from JSON-LD, falling back to site-specific
// markup markers. Enrichment is strictly sequential with a randomized
// politeness delay between items.
type ScrapedSite struct {
	id      string
	domain  string
	serp    *serpClient
	fetcher *Fetcher
	logger  *zap.Logger

	// markup fallbacks when JSON-LD is missing or incomplete
	dateSelector string
	dateAttr     string // empty means the element text holds the value
	likeSelector string
	likeAttr     string
}

func NewZenn(fetcher *Fetcher, logger *zap.Logger) *ScrapedSite {
	return newScrapedSite("zenn", "zenn.dev", fetcher, logger, scrapedMarkers{
		dateSelector: "time[datetime]",
		dateAttr:     "datetime",
		likeSelector: `button[aria-label="いいね"] span`,
	})
}

func NewNote(fetcher *Fetcher, logger *zap.Logger) *ScrapedSite {
	return newScrapedSite("note", "note.com", fetcher, logger, scrapedMarkers{
		dateSelector: "time[datetime]",
		dateAttr:     "datetime",
		likeSelector: "[data-like-count]",
		likeAttr:     "data-like-count",
	})
}

type scrapedMarkers struct {
	dateSelector string
	dateAttr     string
	likeSelector string
	likeAttr     string
}

func newScrapedSite(id, domain string, fetcher *Fetcher, logger *zap.Logger, m scrapedMarkers) *ScrapedSite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapedSite{
		id:           id,
		domain:       domain,
		serp:         newSERPClient(fetcher),
		fetcher:      fetcher,
		logger:       logger,
		dateSelector: m.dateSelector,
		dateAttr:     m.dateAttr,
		likeSelector: m.likeSelector,
		likeAttr:     m.likeAttr,
	}
}

func (s *ScrapedSite) ID() string { return s.id }

func (s *ScrapedSite) Discover(ctx context.Context, tokens []string, max int) ([]Item, error) {
	items, err := s.serp.search(ctx, tokens, s.domain, s.id, max)
	if err != nil {
		if IsAborted(err) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

func (s *ScrapedSite) Enrich(ctx context.Context, items []Item) ([]Enriched, error) {
	out := make([]Enriched, 0, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := s.fetcher.Delay(ctx); err != nil {
				return nil, err
			}
		}
		e, err := s.enrichOne(ctx, it)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// enrichOne returns a non-nil error only for cancellation; fetch and parse
// failures degrade to an item without metadata.
func (s *ScrapedSite) enrichOne(ctx context.Context, it Item) (Enriched, error) {
	e := Enriched{Item: it}

	body, err := s.fetcher.Get(ctx, it.URL, nil)
	if err != nil {
		if IsAborted(err) {
			return e, err
		}
		s.logger.Warn("article fetch failed",
			zap.String("source", s.id),
			zap.String("url", it.URL),
			zap.Error(err))
		return e, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("article parse failed",
			zap.String("source", s.id),
			zap.String("url", it.URL),
			zap.Error(err))
		return e, nil
	}

	meta := extractJSONLD(doc)
	if meta.publishedAt == nil {
		meta.publishedAt = s.dateFromMarkup(doc)
	}
	if meta.likeCount == nil {
		meta.likeCount = s.likesFromMarkup(doc)
	}
	e.PublishedAt = meta.publishedAt
	e.LikeCount = meta.likeCount
	return e, nil
}

func (s *ScrapedSite) dateFromMarkup(doc *goquery.Document) *time.Time {
	if s.dateSelector == "" {
		return nil
	}
	raw := selectorValue(doc, s.dateSelector, s.dateAttr)
	if ts, ok := parseDate(raw); ok {
		return &ts
	}
	return nil
}

func (s *ScrapedSite) likesFromMarkup(doc *goquery.Document) *int {
	if s.likeSelector == "" {
		return nil
	}
	raw := selectorValue(doc, s.likeSelector, s.likeAttr)
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return &n
	}
	return nil
}

func selectorValue(doc *goquery.Document, selector, attr string) string {
	sel := doc.Find(selector).First()
	if attr != "" {
		v, _ := sel.Attr(attr)
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(sel.Text())
}
