package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a contact search.
type SearchParams struct {
	Query   string // User's search query
	OwnerID string // Restrict results to one owner's contacts

	// Filters
	Tags []string // Filter by exact tag slugs (AND)

	// Pagination
	Limit  int
	Offset int

	// Options
	Highlight bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Offset:    0,
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single matched contact.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Nickname   string            `json:"nickname,omitempty"`
	Company    string            `json:"company,omitempty"`
	Email      string            `json:"email,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a contact search.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("company")
	}

	searchRequest.Fields = []string{
		"id", "name", "nickname", "company", "email", "tags",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if n, ok := hit.Fields["nickname"].(string); ok {
			searchHit.Nickname = n
		}
		if c, ok := hit.Fields["company"].(string); ok {
			searchHit.Company = c
		}
		if e, ok := hit.Fields["email"].(string); ok {
			searchHit.Email = e
		}
		switch tags := hit.Fields["tags"].(type) {
		case string:
			searchHit.Tags = []string{tags}
		case []interface{}:
			for _, t := range tags {
				if slug, ok := t.(string); ok {
					searchHit.Tags = append(searchHit.Tags, slug)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query: names first, then company and notes. Fuzzy and
	// prefix variants of the name match cover typos and autocomplete.
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		nicknameMatch := bleve.NewMatchQuery(params.Query)
		nicknameMatch.SetField("nickname")
		nicknameMatch.SetBoost(2.5)
		textQueries = append(textQueries, nicknameMatch)

		companyMatch := bleve.NewMatchQuery(params.Query)
		companyMatch.SetField("company")
		companyMatch.SetBoost(1.5)
		textQueries = append(textQueries, companyMatch)

		jobMatch := bleve.NewMatchQuery(params.Query)
		jobMatch.SetField("job_title")
		textQueries = append(textQueries, jobMatch)

		notesMatch := bleve.NewMatchQuery(params.Query)
		notesMatch.SetField("notes")
		textQueries = append(textQueries, notesMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Owner filter - always applied when set.
	if params.OwnerID != "" {
		ownerQuery := bleve.NewTermQuery(params.OwnerID)
		ownerQuery.SetField("owner_id")
		queries = append(queries, ownerQuery)
	}

	// Tag filter (exact match, AND across slugs).
	for _, slug := range params.Tags {
		tq := bleve.NewTermQuery(slug)
		tq.SetField("tags")
		queries = append(queries, tq)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(queries...)
}
