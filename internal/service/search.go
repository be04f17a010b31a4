package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kinshipapp/kinship-server/internal/search"
	"github.com/kinshipapp/kinship-server/internal/store"
	"github.com/kinshipapp/kinship-server/internal/util"
)

// SearchService runs contact searches and keeps the index in sync with
// the store.
type SearchService struct {
	store  store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// Search runs a full-text contact search scoped to the owner. Tag filters
// are normalized the same way tags are on write, so "Book Club" matches
// the stored slug.
func (s *SearchService) Search(ctx context.Context, ownerID, query string, tags []string, limit, offset int) (*search.SearchResult, error) {
	params := search.DefaultSearchParams()
	params.Query = query
	params.OwnerID = ownerID
	if limit > 0 {
		params.Limit = limit
	}
	if offset > 0 {
		params.Offset = offset
	}

	for _, tag := range tags {
		if slug := util.NormalizeTagSlug(tag); slug != "" {
			params.Tags = append(params.Tags, slug)
		}
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return result, nil
}

// DocumentCount returns the number of indexed contacts.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the search index from the store. Used after mapping
// changes and as a repair tool.
func (s *SearchService) ReindexAll(ctx context.Context, ownerIDs []string) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	total := 0
	for _, ownerID := range ownerIDs {
		contacts, err := s.store.ListContacts(ctx, ownerID)
		if err != nil {
			return total, fmt.Errorf("list contacts for %s: %w", ownerID, err)
		}
		if len(contacts) == 0 {
			continue
		}

		contactIDs := make([]string, len(contacts))
		for i, c := range contacts {
			contactIDs[i] = c.ID
		}
		tagsByContact, err := s.store.TagsForContacts(ctx, contactIDs)
		if err != nil {
			return total, fmt.Errorf("load tags: %w", err)
		}

		docs := make([]*search.ContactDocument, len(contacts))
		for i, c := range contacts {
			docs[i] = search.ContactToDocument(c, tagsByContact[c.ID])
		}
		if err := s.index.IndexContacts(docs); err != nil {
			return total, fmt.Errorf("index contacts: %w", err)
		}
		total += len(docs)
	}

	if s.logger != nil {
		s.logger.Info("Search index rebuilt", "documents", total)
	}

	return total, nil
}
