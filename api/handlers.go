package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"techscout/aggregate"
	"techscout/export"
	"techscout/search"
	"techscout/source"

	"go.uber.org/zap"
)

const defaultMaxResults = 30

// SearchHandler runs the aggregation pipeline for HTTP callers. The request
// context doubles as the run's cancellation signal: a client that goes away
// aborts the run.
type SearchHandler struct {
	engine    *aggregate.Engine
	registry  *source.Registry
	extractor search.KeywordExtractor
	logger    *zap.Logger
}

func NewSearchHandler(engine *aggregate.Engine, registry *source.Registry, extractor search.KeywordExtractor, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{engine: engine, registry: registry, extractor: extractor, logger: logger}
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
	Max   int    `json:"max,omitempty"`
	Sort  string `json:"sort,omitempty"` // "recency" (default) or "popularity"
}

type SearchResponse struct {
	Count   int               `json:"count"`
	Results []source.Enriched `json:"results"`
}

// Search handles search requests
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	max := req.Max
	if max <= 0 {
		max = defaultMaxResults
	}

	tokens, err := h.extractor.ExtractKeywords(req.Query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := h.engine.Run(r.Context(), tokens, h.registry.All(), max)
	if err != nil {
		if source.IsAborted(err) {
			h.logger.Info("search run aborted", zap.Error(err))
			http.Error(w, "search aborted", http.StatusRequestTimeout)
			return
		}
		h.logger.Error("search run failed", zap.Error(err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	export.Sort(results, req.Sort)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SearchResponse{Count: len(results), Results: results})
}
