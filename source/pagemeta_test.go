package source

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractJSONLDDateAndLikes(t *testing.T) {
	doc := docFrom(t, `<html><head>
<script type="application/ld+json">
{
  "@type": "Article",
  "datePublished": "2024-01-01T00:00:00Z",
  "interactionStatistic": [
    {"interactionType": {"@type": "CommentAction"}, "userInteractionCount": 3},
    {"interactionType": {"@type": "LikeAction"}, "userInteractionCount": 42}
  ]
}
</script>
</head><body></body></html>`)

	meta := extractJSONLD(doc)
	require.NotNil(t, meta.publishedAt)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), meta.publishedAt.UTC())
	require.NotNil(t, meta.likeCount)
	assert.Equal(t, 42, *meta.likeCount)
}

func TestExtractJSONLDStringInteractionType(t *testing.T) {
	doc := docFrom(t, `<html><head>
<script type="application/ld+json">
{"datePublished": "2023-06-15", "interactionStatistic": {"interactionType": "https://schema.org/LikeAction", "userInteractionCount": 7}}
</script>
</head></html>`)

	meta := extractJSONLD(doc)
	require.NotNil(t, meta.publishedAt)
	assert.Equal(t, 2023, meta.publishedAt.Year())
	require.NotNil(t, meta.likeCount)
	assert.Equal(t, 7, *meta.likeCount)
}

func TestExtractJSONLDSkipsMalformedBlocks(t *testing.T) {
	doc := docFrom(t, `<html><head>
<script type="application/ld+json">{not json at all</script>
<script type="application/ld+json">{"datePublished": "2024-02-02T10:00:00Z"}</script>
</head></html>`)

	meta := extractJSONLD(doc)
	require.NotNil(t, meta.publishedAt)
	assert.Nil(t, meta.likeCount)
}

func TestExtractJSONLDNothingUsable(t *testing.T) {
	doc := docFrom(t, `<html><head>
<script type="application/ld+json">{"@type": "Article"}</script>
</head></html>`)

	meta := extractJSONLD(doc)
	assert.Nil(t, meta.publishedAt)
	assert.Nil(t, meta.likeCount)
}

func TestParseDateFormats(t *testing.T) {
	testCases := []struct {
		in string
		ok bool
	}{
		{"2024-01-01T00:00:00Z", true},
		{"2024-01-01T09:30:00+09:00", true},
		{"2024-01-01T09:30:00", true},
		{"2024-01-01", true},
		{"January 1st", false},
		{"", false},
	}
	for _, tc := range testCases {
		_, ok := parseDate(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
	}
}
