package relevance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// KeywordRelevanceFilter scores text against a set of keywords using
// stemmed matching, so "caching" still matches "cache".
type KeywordRelevanceFilter struct {
	stems []string
}

// NewKeywordRelevanceFilter initializes the filter with the given keywords.
func NewKeywordRelevanceFilter(keywords []string) (*KeywordRelevanceFilter, error) {
	stems := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		stems = append(stems, stemWord(k))
	}
	if len(stems) == 0 {
		return nil, fmt.Errorf("no keywords provided")
	}
	return &KeywordRelevanceFilter{stems: stems}, nil
}

// IsContentRelevant checks if at least one keyword stem occurs in the
// content. Returns true if at least one matches, along with a score
// (fraction of keywords found).
func (f *KeywordRelevanceFilter) IsContentRelevant(content string) (bool, float32, error) {
	if content == "" {
		return false, 0.0, nil
	}

	contentStems := make(map[string]struct{})
	normalized := nonWord.ReplaceAllString(strings.ToLower(content), " ")
	for _, w := range strings.Fields(normalized) {
		contentStems[stemWord(w)] = struct{}{}
	}

	found := 0
	for _, s := range f.stems {
		if _, ok := contentStems[s]; ok {
			found++
		}
	}
	if found == 0 {
		return false, 0.0, nil
	}

	score := float32(found) / float32(len(f.stems))
	return true, score, nil
}

func stemWord(w string) string {
	stemmed, err := snowball.Stem(w, "english", true)
	if err != nil {
		return w
	}
	return stemmed
}
