package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/kinshipapp/kinship-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchContacts",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search contacts",
		Description: "Full-text contact search with optional tag filters",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchContacts)
}

// === DTOs ===

// SearchInput contains search parameters.
type SearchInput struct {
	Authorization string   `header:"Authorization"`
	Query         string   `query:"q" doc:"Search query"`
	Tags          []string `query:"tag" doc:"Tag filters, all must match"`
	Limit         int      `query:"limit" doc:"Maximum hits to return (default 20)"`
	Offset        int      `query:"offset" doc:"Pagination offset"`
}

// SearchHitResponse is a single matched contact.
type SearchHitResponse struct {
	ID         string            `json:"id" doc:"Contact ID"`
	Score      float64           `json:"score" doc:"Match relevance"`
	Name       string            `json:"name" doc:"Full name"`
	Nickname   string            `json:"nickname,omitempty" doc:"Nickname"`
	Company    string            `json:"company,omitempty" doc:"Company"`
	Email      string            `json:"email,omitempty" doc:"Email address"`
	Tags       []string          `json:"tags,omitempty" doc:"Tag slugs"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Match highlighting per field"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string              `json:"query" doc:"The executed query"`
	Total  uint64              `json:"total" doc:"Total matching contacts"`
	TookMs int64               `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResponse `json:"hits" doc:"Matched contacts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearchContacts(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Search.Search(ctx, userID, input.Query, input.Tags, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: mapSearchResult(result)}, nil
}

// === Helpers ===

func mapSearchResult(result *search.SearchResult) SearchResponse {
	hits := make([]SearchHitResponse, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResponse{
			ID:         h.ID,
			Score:      h.Score,
			Name:       h.Name,
			Nickname:   h.Nickname,
			Company:    h.Company,
			Email:      h.Email,
			Tags:       h.Tags,
			Highlights: h.Highlights,
		}
	}

	return SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}
}
