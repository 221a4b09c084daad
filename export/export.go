package export

import (
	"sort"
	"strings"

	"techscout/source"
)

// The engine guarantees nothing about output order, so display sorting is
// defensive: missing dates and like counts sort as the lowest value.

// SortByRecency orders newest first; like count breaks ties, then the
// provider's discovery rank.
func SortByRecency(items []source.Enriched) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			// fall through to tie-breaks
		case a.PublishedAt == nil:
			return false
		case b.PublishedAt == nil:
			return true
		case !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		}
		if la, lb := likeValue(a), likeValue(b); la != lb {
			return la > lb
		}
		return a.Rank < b.Rank
	})
}

// SortByPopularity orders by like count; publication date breaks ties,
// then the provider's discovery rank.
func SortByPopularity(items []source.Enriched) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if la, lb := likeValue(a), likeValue(b); la != lb {
			return la > lb
		}
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
		case a.PublishedAt == nil:
			return false
		case b.PublishedAt == nil:
			return true
		case !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		}
		return a.Rank < b.Rank
	})
}

// Sort applies the named ordering; anything other than "popularity" means
// recency.
func Sort(items []source.Enriched, by string) {
	if by == "popularity" {
		SortByPopularity(items)
		return
	}
	SortByRecency(items)
}

// JoinURLs renders the export payload: one URL per line.
func JoinURLs(items []source.Enriched) string {
	urls := make([]string, len(items))
	for i, it := range items {
		urls[i] = it.URL
	}
	return strings.Join(urls, "\n")
}

func likeValue(e source.Enriched) int {
	if e.LikeCount == nil {
		// below zero likes, so unknown never outranks known
		return -1
	}
	return *e.LikeCount
}
