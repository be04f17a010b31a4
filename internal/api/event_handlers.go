package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/service"
)

func (s *Server) registerEventRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "List events",
		Description: "Returns all calendar events for the current user",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListEvents)

	huma.Register(s.api, huma.Operation{
		OperationID: "createEvent",
		Method:      http.MethodPost,
		Path:        "/api/v1/events",
		Summary:     "Create event",
		Description: "Creates a calendar event, optionally linked to contacts",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUpcomingEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/events/upcoming",
		Summary:     "List upcoming events",
		Description: "Returns future events ordered by start date",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUpcomingEvents)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEvent",
		Method:      http.MethodGet,
		Path:        "/api/v1/events/{id}",
		Summary:     "Get event",
		Description: "Returns an event with its linked contacts",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateEvent",
		Method:      http.MethodPut,
		Path:        "/api/v1/events/{id}",
		Summary:     "Update event",
		Description: "Replaces an event and its contact links",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteEvent",
		Method:      http.MethodDelete,
		Path:        "/api/v1/events/{id}",
		Summary:     "Delete event",
		Description: "Deletes an event",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteEvent)
}

// === DTOs ===

// EventRequest is the request body for creating or updating an event.
type EventRequest struct {
	Title           string     `json:"title" validate:"required,max=200" doc:"Event title"`
	Description     string     `json:"description,omitempty" validate:"max=2000" doc:"Description"`
	Location        string     `json:"location,omitempty" validate:"max=500" doc:"Location"`
	StartDate       time.Time  `json:"start_date" validate:"required" doc:"Start date"`
	EndDate         *time.Time `json:"end_date,omitempty" doc:"End date, must not be before the start"`
	ReminderMinutes *int       `json:"reminder_minutes,omitempty" validate:"omitempty,min=0" doc:"Reminder lead time in minutes"`
	ContactIDs      []string   `json:"contact_ids,omitempty" doc:"Linked contact IDs"`
}

// EventResponse contains event data in API responses.
type EventResponse struct {
	ID              string            `json:"id" doc:"Event ID"`
	Title           string            `json:"title" doc:"Event title"`
	Description     string            `json:"description,omitempty" doc:"Description"`
	Location        string            `json:"location,omitempty" doc:"Location"`
	StartDate       time.Time         `json:"start_date" doc:"Start date"`
	EndDate         *time.Time        `json:"end_date,omitempty" doc:"End date"`
	ReminderMinutes *int              `json:"reminder_minutes,omitempty" doc:"Reminder lead time in minutes"`
	Contacts        []ContactResponse `json:"contacts" doc:"Linked contacts"`
	CreatedAt       time.Time         `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt       time.Time         `json:"updated_at" doc:"Last update timestamp"`
}

// CreateEventInput wraps the create event request for Huma.
type CreateEventInput struct {
	Authorization string `header:"Authorization"`
	Body          EventRequest
}

// EventOutput wraps a single event response for Huma.
type EventOutput struct {
	Body EventResponse
}

// ListEventsInput contains parameters for listing events.
type ListEventsInput struct {
	Authorization string `header:"Authorization"`
}

// ListUpcomingEventsInput contains parameters for listing upcoming events.
type ListUpcomingEventsInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" doc:"Maximum events to return (default 10)"`
}

// ListEventsResponse contains a list of events.
type ListEventsResponse struct {
	Events []EventResponse `json:"events" doc:"List of events"`
}

// ListEventsOutput wraps the list events response for Huma.
type ListEventsOutput struct {
	Body ListEventsResponse
}

// GetEventInput contains parameters for getting an event.
type GetEventInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Event ID"`
}

// UpdateEventInput wraps the update event request for Huma.
type UpdateEventInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Event ID"`
	Body          EventRequest
}

// DeleteEventInput contains parameters for deleting an event.
type DeleteEventInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Event ID"`
}

// === Handlers ===

func (s *Server) handleListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	events, err := s.services.Event.ListEvents(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListEventsOutput{Body: ListEventsResponse{Events: mapEvents(events)}}, nil
}

func (s *Server) handleCreateEvent(ctx context.Context, input *CreateEventInput) (*EventOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	event, err := s.services.Event.CreateEvent(ctx, userID, mapEventRequest(input.Body))
	if err != nil {
		return nil, err
	}

	return &EventOutput{Body: mapEvent(event)}, nil
}

func (s *Server) handleListUpcomingEvents(ctx context.Context, input *ListUpcomingEventsInput) (*ListEventsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	events, err := s.services.Event.ListUpcomingEvents(ctx, userID, time.Now(), input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListEventsOutput{Body: ListEventsResponse{Events: mapEvents(events)}}, nil
}

func (s *Server) handleGetEvent(ctx context.Context, input *GetEventInput) (*EventOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	event, err := s.services.Event.GetEvent(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &EventOutput{Body: mapEvent(event)}, nil
}

func (s *Server) handleUpdateEvent(ctx context.Context, input *UpdateEventInput) (*EventOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	event, err := s.services.Event.UpdateEvent(ctx, userID, input.ID, mapEventRequest(input.Body))
	if err != nil {
		return nil, err
	}

	return &EventOutput{Body: mapEvent(event)}, nil
}

func (s *Server) handleDeleteEvent(ctx context.Context, input *DeleteEventInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Event.DeleteEvent(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Event deleted"}}, nil
}

// === Helpers ===

func mapEventRequest(req EventRequest) service.EventRequest {
	return service.EventRequest{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		ReminderMinutes: req.ReminderMinutes,
		ContactIDs:      req.ContactIDs,
	}
}

func mapEvent(e *domain.EventWithContacts) EventResponse {
	contacts := make([]ContactResponse, len(e.Contacts))
	for i := range e.Contacts {
		contacts[i] = mapContact(&e.Contacts[i], nil)
	}

	return EventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		StartDate:       e.StartDate,
		EndDate:         e.EndDate,
		ReminderMinutes: e.ReminderMinutes,
		Contacts:        contacts,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func mapEvents(events []domain.EventWithContacts) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = mapEvent(&events[i])
	}
	return resp
}
