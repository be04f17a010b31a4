package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/kinshipapp/kinship-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags for the current user",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Creates a new tag, or returns the existing one with the same slug",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPopularTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/popular",
		Summary:     "List popular tags",
		Description: "Returns tags ordered by how many contacts carry them",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPopularTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes a tag and removes it from all contacts",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "setContactTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/contacts/{id}/tags",
		Summary:     "Set contact tags",
		Description: "Replaces the tag set on a contact, creating tags as needed",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetContactTags)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Authorization string `header:"Authorization"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Slug      string    `json:"slug" doc:"Canonical slug, lowercase hyphenated"`
	Name      string    `json:"name" doc:"Display name derived from the slug"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50" doc:"Tag name, normalized to a slug"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateTagRequest
}

// TagOutput wraps the tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// ListPopularTagsInput contains parameters for listing popular tags.
type ListPopularTagsInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" doc:"Maximum tags to return (default 10)"`
}

// PopularTagResponse is a tag with its contact count.
type PopularTagResponse struct {
	TagResponse
	ContactCount int `json:"contact_count" doc:"Number of contacts carrying this tag"`
}

// ListPopularTagsResponse contains tags ordered by usage.
type ListPopularTagsResponse struct {
	Tags []PopularTagResponse `json:"tags" doc:"Tags ordered by contact count"`
}

// ListPopularTagsOutput wraps the popular tags response for Huma.
type ListPopularTagsOutput struct {
	Body ListPopularTagsResponse
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
}

// SetContactTagsRequest is the request body for replacing a contact's tags.
type SetContactTagsRequest struct {
	Tags []string `json:"tags" doc:"Tag names, an empty list clears all tags"`
}

// SetContactTagsInput wraps the set contact tags request for Huma.
type SetContactTagsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
	Body          SetContactTagsRequest
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = mapTag(t)
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.CreateTag(ctx, userID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: mapTag(tag)}, nil
}

func (s *Server) handleListPopularTags(ctx context.Context, input *ListPopularTagsInput) (*ListPopularTagsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListPopularTags(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]PopularTagResponse, len(tags))
	for i := range tags {
		resp[i] = PopularTagResponse{
			TagResponse:  mapTag(&tags[i].Tag),
			ContactCount: tags[i].ContactCount,
		}
	}

	return &ListPopularTagsOutput{Body: ListPopularTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTag(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}

func (s *Server) handleSetContactTags(ctx context.Context, input *SetContactTagsInput) (*ListTagsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.SetContactTags(ctx, userID, input.ID, input.Body.Tags)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i := range tags {
		resp[i] = mapTag(&tags[i])
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

// === Helpers ===

func mapTag(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Slug:      t.Slug,
		Name:      displayName(t.Slug),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// displayName turns a slug back into a human-readable label.
// Kept here for clients that want a server-rendered name.
func displayName(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
