package search

// KeywordExtractor turns a free-text query into the ordered keyword tokens
// every provider receives as an AND query.
type KeywordExtractor interface {
	ExtractKeywords(query string) ([]string, error)
}
