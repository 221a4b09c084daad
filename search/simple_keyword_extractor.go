package search

import (
	"fmt"
	"strings"
	"unicode"
)

// SimpleKeywordExtractor splits a raw query on whitespace and ampersands.
// Tokens pass through verbatim: the remote sources do their own matching,
// so no stemming or stop-word removal belongs here.
type SimpleKeywordExtractor struct{}

func NewSimpleKeywordExtractor() *SimpleKeywordExtractor {
	return &SimpleKeywordExtractor{}
}

func (ske *SimpleKeywordExtractor) ExtractKeywords(query string) ([]string, error) {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return r == '&' || unicode.IsSpace(r)
	})

	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		keywords = append(keywords, f)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("query contains no keywords")
	}
	return keywords, nil
}
