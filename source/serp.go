package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const serpBaseURL = "https://html.duckduckgo.com/html/"

// serpClient runs site-restricted keyword searches against the DuckDuckGo
// HTML endpoint. Result links point at a redirect carrying the real target
// in the uddg parameter.
type serpClient struct {
	fetcher *Fetcher
	baseURL string
}

func newSERPClient(fetcher *Fetcher) *serpClient {
	return &serpClient{fetcher: fetcher, baseURL: serpBaseURL}
}

func (s *serpClient) search(ctx context.Context, tokens []string, site, sourceID string, max int) ([]Item, error) {
	params := url.Values{}
	params.Set("q", strings.Join(tokens, " ")+" site:"+site)

	body, err := s.fetcher.Get(ctx, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var items []Item
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		anchor := sel.Find("a.result__a").First()
		title := strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		target := resolveRedirect(href)
		if title == "" || target == "" {
			// rows missing either are unusable
			return true
		}
		items = append(items, Item{
			URL:      target,
			SourceID: sourceID,
			Title:    title,
			Snippet:  strings.TrimSpace(sel.Find(".result__snippet").Text()),
			Rank:     len(items) + 1,
		})
		return len(items) < max
	})
	return items, nil
}

// resolveRedirect unwraps the uddg redirect parameter from a result link.
// Absolute links without the parameter pass through unchanged.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		if tu, err := url.Parse(target); err == nil && tu.IsAbs() && tu.Host != "" {
			return target
		}
		return ""
	}
	if strings.Contains(u.Host, "duckduckgo.com") {
		// redirect link without a target
		return ""
	}
	if u.IsAbs() && u.Host != "" {
		return u.String()
	}
	return ""
}
