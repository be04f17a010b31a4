package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/kinshipapp/kinship-server/internal/domain"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Get dashboard",
		Description: "Returns due and upcoming contacts, recent contacts, popular tags and upcoming events",
		Tags:        []string{"Dashboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "listDueContacts",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard/due",
		Summary:     "List due contacts",
		Description: "Returns contacts whose reminder date has passed, most overdue first. An as_of cutoff lets reminder delivery query ahead of time",
		Tags:        []string{"Dashboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListDueContacts)
}

// === DTOs ===

// DashboardInput contains parameters for the dashboard view.
type DashboardInput struct {
	Authorization string `header:"Authorization"`
}

// DashboardResponse is the aggregate home view.
type DashboardResponse struct {
	DueContacts      []ContactResponse    `json:"due_contacts" doc:"Contacts whose reminder has passed"`
	UpcomingContacts []ContactResponse    `json:"upcoming_contacts" doc:"Contacts due within the next two weeks"`
	RecentContacts   []ContactResponse    `json:"recent_contacts" doc:"Most recently contacted"`
	PopularTags      []PopularTagResponse `json:"popular_tags" doc:"Tags ordered by usage"`
	UpcomingEvents   []EventResponse      `json:"upcoming_events" doc:"Next calendar events"`
}

// DashboardOutput wraps the dashboard response for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

// DueContactsInput contains parameters for the due contacts list.
type DueContactsInput struct {
	Authorization string    `header:"Authorization"`
	AsOf          time.Time `query:"as_of" doc:"Cutoff for due reminders, defaults to now"`
}

// === Handlers ===

func (s *Server) handleGetDashboard(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	dash, err := s.services.Dashboard.GetDashboard(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	popular := make([]PopularTagResponse, len(dash.PopularTags))
	for i := range dash.PopularTags {
		popular[i] = PopularTagResponse{
			TagResponse:  mapTag(&dash.PopularTags[i].Tag),
			ContactCount: dash.PopularTags[i].ContactCount,
		}
	}

	return &DashboardOutput{
		Body: DashboardResponse{
			DueContacts:      mapContactList(dash.DueContacts),
			UpcomingContacts: mapContactList(dash.UpcomingContacts),
			RecentContacts:   mapContactList(dash.RecentContacts),
			PopularTags:      popular,
			UpcomingEvents:   mapEvents(dash.UpcomingEvents),
		},
	}, nil
}

func (s *Server) handleListDueContacts(ctx context.Context, input *DueContactsInput) (*ListContactsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	contacts, err := s.services.Dashboard.ListDueContacts(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	return &ListContactsOutput{Body: ListContactsResponse{Contacts: mapContactList(contacts)}}, nil
}

// === Helpers ===

func mapContactList(contacts []domain.ContactWithTags) []ContactResponse {
	resp := make([]ContactResponse, len(contacts))
	for i := range contacts {
		resp[i] = mapContactWithTags(&contacts[i])
	}
	return resp
}
