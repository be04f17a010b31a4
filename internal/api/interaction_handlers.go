package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/service"
)

func (s *Server) registerInteractionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listInteractions",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/{id}/interactions",
		Summary:     "List interactions",
		Description: "Returns the interaction history for a contact, newest first",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListInteractions)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordInteraction",
		Method:      http.MethodPost,
		Path:        "/api/v1/contacts/{id}/interactions",
		Summary:     "Record interaction",
		Description: "Logs an interaction, reschedules the reminder and recomputes relationship metrics",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordInteraction)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteInteraction",
		Method:      http.MethodDelete,
		Path:        "/api/v1/contacts/{id}/interactions/{logId}",
		Summary:     "Delete interaction",
		Description: "Removes a logged interaction and recomputes relationship metrics",
		Tags:        []string{"Interactions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteInteraction)
}

// === DTOs ===

// InteractionResponse contains one logged interaction in API responses.
type InteractionResponse struct {
	ID           string     `json:"id" doc:"Interaction ID"`
	ContactID    string     `json:"contact_id" doc:"Contact ID"`
	ContactDate  time.Time  `json:"contact_date" doc:"When the interaction happened"`
	ContactType  string     `json:"contact_type" doc:"Interaction type (call, text, meetup, ...)"`
	Notes        string     `json:"notes,omitempty" doc:"Notes"`
	GotResponse  bool       `json:"got_response" doc:"Whether the contact responded"`
	ResponseDate *time.Time `json:"response_date,omitempty" doc:"When the response came"`
	CreatedAt    time.Time  `json:"created_at" doc:"Creation timestamp"`
}

// RecordInteractionRequest is the request body for logging an interaction.
type RecordInteractionRequest struct {
	ContactDate       time.Time  `json:"contact_date" validate:"required" doc:"When the interaction happened"`
	ContactType       string     `json:"contact_type" validate:"required,max=50" doc:"Interaction type"`
	Notes             string     `json:"notes,omitempty" doc:"Notes"`
	GotResponse       bool       `json:"got_response,omitempty" doc:"Whether the contact responded"`
	ResponseDate      *time.Time `json:"response_date,omitempty" doc:"When the response came"`
	ResetReminder     *bool      `json:"reset_reminder,omitempty" doc:"Reschedule the next reminder from the interaction date. Defaults to true; pass false to backfill history without touching the schedule"`
	FrequencyOverride *int       `json:"frequency_override,omitempty" validate:"omitempty,min=1,max=120" doc:"New reminder cadence in months"`
}

// RecordInteractionInput wraps the record interaction request for Huma.
type RecordInteractionInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
	Body          RecordInteractionRequest
}

// ListInteractionsInput contains parameters for listing interactions.
type ListInteractionsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
}

// ListInteractionsResponse contains a contact's interaction history.
type ListInteractionsResponse struct {
	Interactions []InteractionResponse `json:"interactions" doc:"Interaction history, newest first"`
}

// ListInteractionsOutput wraps the list interactions response for Huma.
type ListInteractionsOutput struct {
	Body ListInteractionsResponse
}

// DeleteInteractionInput contains parameters for deleting an interaction.
type DeleteInteractionInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
	LogID         string `path:"logId" doc:"Interaction ID"`
}

// === Handlers ===

func (s *Server) handleListInteractions(ctx context.Context, input *ListInteractionsInput) (*ListInteractionsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	logs, err := s.services.Contact.ListInteractions(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	// The store returns oldest first, clients want the most recent on top.
	resp := make([]InteractionResponse, len(logs))
	for i := range logs {
		resp[len(logs)-1-i] = mapInteraction(&logs[i])
	}

	return &ListInteractionsOutput{Body: ListInteractionsResponse{Interactions: resp}}, nil
}

func (s *Server) handleRecordInteraction(ctx context.Context, input *RecordInteractionInput) (*ContactOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.RecordInteraction(ctx, userID, input.ID, service.RecordInteractionRequest{
		ContactDate:       input.Body.ContactDate,
		ContactType:       input.Body.ContactType,
		Notes:             input.Body.Notes,
		GotResponse:       input.Body.GotResponse,
		ResponseDate:      input.Body.ResponseDate,
		ResetReminder:     input.Body.ResetReminder,
		FrequencyOverride: input.Body.FrequencyOverride,
	})
	if err != nil {
		return nil, err
	}

	// The updated contact carries the rescheduled reminder and fresh metrics.
	tags, err := s.services.Contact.ContactTags(ctx, contact.ID)
	if err != nil {
		return nil, err
	}

	return &ContactOutput{Body: mapContact(contact, tags)}, nil
}

func (s *Server) handleDeleteInteraction(ctx context.Context, input *DeleteInteractionInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Contact.DeleteInteraction(ctx, userID, input.ID, input.LogID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Interaction deleted"}}, nil
}

// === Helpers ===

func mapInteraction(l *domain.ContactLog) InteractionResponse {
	return InteractionResponse{
		ID:           l.ID,
		ContactID:    l.ContactID,
		ContactDate:  l.ContactDate,
		ContactType:  l.ContactType,
		Notes:        l.Notes,
		GotResponse:  l.GotResponse,
		ResponseDate: l.ResponseDate,
		CreatedAt:    l.CreatedAt,
	}
}
