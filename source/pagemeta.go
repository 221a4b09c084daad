package source

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// pageMeta is what enrichment tries to pull out of an article page.
type pageMeta struct {
	publishedAt *time.Time
	likeCount   *int
}

type jsonLD struct {
	DatePublished        string          `json:"datePublished"`
	InteractionStatistic json.RawMessage `json:"interactionStatistic"`
}

type interactionCounter struct {
	InteractionType      json.RawMessage `json:"interactionType"`
	UserInteractionCount json.Number     `json:"userInteractionCount"`
}

// extractJSONLD walks the page's ld+json script blocks and keeps the first
// well-formed values it finds. Malformed blocks are skipped, not fatal.
func extractJSONLD(doc *goquery.Document) pageMeta {
	var meta pageMeta
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var ld jsonLD
		if err := json.Unmarshal([]byte(sel.Text()), &ld); err != nil {
			return true
		}
		if meta.publishedAt == nil && ld.DatePublished != "" {
			if ts, ok := parseDate(ld.DatePublished); ok {
				meta.publishedAt = &ts
			}
		}
		if meta.likeCount == nil {
			if n, ok := likeCountFrom(ld.InteractionStatistic); ok {
				meta.likeCount = &n
			}
		}
		return meta.publishedAt == nil || meta.likeCount == nil
	})
	return meta
}

// likeCountFrom reads interactionStatistic, which schema.org allows as a
// single object or an array, and returns the count of the LikeAction entry.
func likeCountFrom(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var counters []interactionCounter
	if err := json.Unmarshal(raw, &counters); err != nil {
		var single interactionCounter
		if err := json.Unmarshal(raw, &single); err != nil {
			return 0, false
		}
		counters = []interactionCounter{single}
	}
	for _, c := range counters {
		if !isLikeAction(c.InteractionType) {
			continue
		}
		if n, err := c.UserInteractionCount.Int64(); err == nil && n >= 0 {
			return int(n), true
		}
	}
	return 0, false
}

// isLikeAction accepts both encodings in the wild: a bare type URL string
// and an object with an @type field.
func isLikeAction(raw json.RawMessage) bool {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.Contains(s, "LikeAction")
	}
	var typed struct {
		Type string `json:"@type"`
	}
	if json.Unmarshal(raw, &typed) == nil {
		return strings.Contains(typed.Type, "LikeAction")
	}
	return false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
