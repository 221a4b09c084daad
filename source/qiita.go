package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	qiitaID       = "qiita"
	qiitaBaseURL  = "https://qiita.com/api/v2"
	qiitaPageSize = 100 // remote per_page cap
)

// Qiita discovers articles through the Qiita v2 items API. Discovery
// payloads already carry publication date and like count, so enrichment is
// a pure projection and never touches the network. The API exposes no view
// counts; they stay absent.
type Qiita struct {
	fetcher *Fetcher
	baseURL string
	token   string
	logger  *zap.Logger
}

type qiitaItem struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
	LikesCount int    `json:"likes_count"`
}

func NewQiita(fetcher *Fetcher, token string, logger *zap.Logger) *Qiita {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Qiita{fetcher: fetcher, baseURL: qiitaBaseURL, token: token, logger: logger}
}

func (q *Qiita) ID() string { return qiitaID }

func (q *Qiita) Discover(ctx context.Context, tokens []string, max int) ([]Item, error) {
	pages := (max + qiitaPageSize - 1) / qiitaPageSize
	query := strings.Join(tokens, " ")

	var headers map[string]string
	if q.token != "" {
		headers = map[string]string{"Authorization": "Bearer " + q.token}
	}

	var items []Item
	for page := 1; page <= pages; page++ {
		if ctx.Err() != nil {
			return items, nil
		}
		if page > 1 {
			if err := q.fetcher.Delay(ctx); err != nil {
				return items, nil
			}
		}

		params := url.Values{}
		params.Set("query", query)
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(qiitaPageSize))

		body, err := q.fetcher.Get(ctx, q.baseURL+"/items?"+params.Encode(), headers)
		if err != nil {
			if IsAborted(err) {
				return items, nil
			}
			return nil, fmt.Errorf("qiita page %d: %w", page, err)
		}

		var pageItems []qiitaItem
		if err := json.Unmarshal(body, &pageItems); err != nil {
			return nil, fmt.Errorf("qiita page %d: decode: %w", page, err)
		}
		if len(pageItems) == 0 {
			break
		}

		for i, it := range pageItems {
			if it.URL == "" {
				continue
			}
			items = append(items, Item{
				URL:      it.URL,
				SourceID: qiitaID,
				Title:    it.Title,
				Snippet:  snippet(it.Body, 200),
				Rank:     (page-1)*qiitaPageSize + i + 1,
				Payload:  it,
			})
			if len(items) >= max {
				return items, nil
			}
		}
	}
	return items, nil
}

func (q *Qiita) Enrich(ctx context.Context, items []Item) ([]Enriched, error) {
	out := make([]Enriched, 0, len(items))
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := Enriched{Item: it}
		if qi, ok := it.Payload.(qiitaItem); ok {
			if ts, err := time.Parse(time.RFC3339, qi.CreatedAt); err == nil {
				e.PublishedAt = &ts
			}
			likes := qi.LikesCount
			e.LikeCount = &likes
		}
		out = append(out, e)
	}
	return out, nil
}

func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
