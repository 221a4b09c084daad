package search

import (
	"testing"
)

func TestSimpleKeywordExtractor(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected []string
		wantErr  bool
	}{
		{"Whitespace", "go concurrency", []string{"go", "concurrency"}, false},
		{"Ampersand", "go&concurrency", []string{"go", "concurrency"}, false},
		{"Mixed", "  go &\tconcurrency patterns ", []string{"go", "concurrency", "patterns"}, false},
		{"KeepsCase", "Go gRPC", []string{"Go", "gRPC"}, false},
		{"OnlySeparators", " & & ", nil, true},
		{"Empty", "", nil, true},
	}

	extractor := NewSimpleKeywordExtractor()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractor.ExtractKeywords(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("token %d: expected %q, got %q", i, tc.expected[i], got[i])
				}
			}
		})
	}
}
