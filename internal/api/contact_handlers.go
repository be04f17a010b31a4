package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/service"
)

func (s *Server) registerContactRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listContacts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts",
		Summary:     "List contacts",
		Description: "Returns all contacts for the current user with their tags",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListContacts)

	huma.Register(s.api, huma.Operation{
		OperationID: "createContact",
		Method:      http.MethodPost,
		Path:        "/api/v1/contacts",
		Summary:     "Create contact",
		Description: "Creates a new contact with optional initial tags",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContact",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Get contact",
		Description: "Returns a contact with its tags and interaction history",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateContact",
		Method:      http.MethodPut,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Update contact",
		Description: "Replaces the profile fields of a contact",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteContact",
		Method:      http.MethodDelete,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Delete contact",
		Description: "Deletes a contact and its interaction history",
		Tags:        []string{"Contacts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteContact)
}

// === DTOs ===

// ContactResponse contains contact data in API responses.
type ContactResponse struct {
	ID        string `json:"id" doc:"Contact ID"`
	FirstName string `json:"first_name" doc:"First name"`
	LastName  string `json:"last_name,omitempty" doc:"Last name"`
	Nickname  string `json:"nickname,omitempty" doc:"Nickname"`
	Company   string `json:"company,omitempty" doc:"Company"`
	JobTitle  string `json:"job_title,omitempty" doc:"Job title"`
	Email     string `json:"email,omitempty" doc:"Email address"`
	Phone     string `json:"phone,omitempty" doc:"Phone number"`
	Notes     string `json:"notes,omitempty" doc:"Notes in Markdown"`

	Birthday *time.Time `json:"birthday,omitempty" doc:"Birthday"`

	AvatarBlurhash string `json:"avatar_blurhash,omitempty" doc:"BlurHash placeholder for the avatar"`
	HasAvatar      bool   `json:"has_avatar" doc:"Whether an avatar image is stored"`

	LastContactDate         *time.Time `json:"last_contact_date,omitempty" doc:"Most recent interaction date"`
	NextContactDate         *time.Time `json:"next_contact_date,omitempty" doc:"Scheduled reminder date"`
	LastResponseDate        *time.Time `json:"last_response_date,omitempty" doc:"Most recent response date"`
	ReminderFrequencyMonths int        `json:"reminder_frequency_months" doc:"Reminder cadence in months"`

	RelationshipScore    int          `json:"relationship_score" doc:"Relationship health score 0-100"`
	ContactFrequencyDays int          `json:"contact_frequency_days" doc:"Observed days between interactions"`
	ContactTrend         domain.Trend `json:"contact_trend" doc:"Interaction frequency trend"`

	Tags []TagResponse `json:"tags" doc:"Tags on this contact"`

	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// ContactDetailResponse is a contact with its interaction history.
type ContactDetailResponse struct {
	ContactResponse
	Logs []InteractionResponse `json:"logs" doc:"Interaction history, newest first"`
}

// ContactRequest is the request body for creating or updating a contact.
type ContactRequest struct {
	FirstName               string     `json:"first_name" validate:"required,max=100" doc:"First name"`
	LastName                string     `json:"last_name,omitempty" validate:"max=100" doc:"Last name"`
	Nickname                string     `json:"nickname,omitempty" validate:"max=100" doc:"Nickname"`
	Company                 string     `json:"company,omitempty" validate:"max=200" doc:"Company"`
	JobTitle                string     `json:"job_title,omitempty" validate:"max=200" doc:"Job title"`
	Email                   string     `json:"email,omitempty" validate:"omitempty,email" doc:"Email address"`
	Phone                   string     `json:"phone,omitempty" validate:"max=50" doc:"Phone number"`
	Notes                   string     `json:"notes,omitempty" doc:"Notes, HTML is converted to Markdown"`
	Birthday                *time.Time `json:"birthday,omitempty" doc:"Birthday"`
	ReminderFrequencyMonths int        `json:"reminder_frequency_months,omitempty" validate:"omitempty,min=1,max=120" doc:"Reminder cadence in months"`
	Tags                    []string   `json:"tags,omitempty" doc:"Initial tag names (create only)"`
}

// CreateContactInput wraps the create contact request for Huma.
type CreateContactInput struct {
	Authorization string `header:"Authorization"`
	Body          ContactRequest
}

// ContactOutput wraps a single contact response for Huma.
type ContactOutput struct {
	Body ContactResponse
}

// ContactDetailOutput wraps the contact detail response for Huma.
type ContactDetailOutput struct {
	Body ContactDetailResponse
}

// ListContactsInput contains parameters for listing contacts.
type ListContactsInput struct {
	Authorization string `header:"Authorization"`
}

// ListContactsResponse contains a list of contacts.
type ListContactsResponse struct {
	Contacts []ContactResponse `json:"contacts" doc:"List of contacts"`
}

// ListContactsOutput wraps the list contacts response for Huma.
type ListContactsOutput struct {
	Body ListContactsResponse
}

// GetContactInput contains parameters for getting a contact.
type GetContactInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
}

// UpdateContactInput wraps the update contact request for Huma.
type UpdateContactInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
	Body          ContactRequest
}

// DeleteContactInput contains parameters for deleting a contact.
type DeleteContactInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Contact ID"`
}

// === Handlers ===

func (s *Server) handleListContacts(ctx context.Context, input *ListContactsInput) (*ListContactsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	contacts, err := s.services.Contact.ListContacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ContactResponse, len(contacts))
	for i := range contacts {
		resp[i] = mapContactWithTags(&contacts[i])
	}

	return &ListContactsOutput{Body: ListContactsResponse{Contacts: resp}}, nil
}

func (s *Server) handleCreateContact(ctx context.Context, input *CreateContactInput) (*ContactOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.CreateContact(ctx, userID, service.CreateContactRequest{
		FirstName:               input.Body.FirstName,
		LastName:                input.Body.LastName,
		Nickname:                input.Body.Nickname,
		Company:                 input.Body.Company,
		JobTitle:                input.Body.JobTitle,
		Email:                   input.Body.Email,
		Phone:                   input.Body.Phone,
		Notes:                   input.Body.Notes,
		Birthday:                input.Body.Birthday,
		ReminderFrequencyMonths: input.Body.ReminderFrequencyMonths,
		Tags:                    input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &ContactOutput{Body: mapContactWithTags(contact)}, nil
}

func (s *Server) handleGetContact(ctx context.Context, input *GetContactInput) (*ContactDetailOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Contact.GetContact(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	logs := make([]InteractionResponse, len(detail.Logs))
	for i := range detail.Logs {
		logs[len(detail.Logs)-1-i] = mapInteraction(&detail.Logs[i])
	}

	return &ContactDetailOutput{
		Body: ContactDetailResponse{
			ContactResponse: mapContact(&detail.Contact, detail.Tags),
			Logs:            logs,
		},
	}, nil
}

func (s *Server) handleUpdateContact(ctx context.Context, input *UpdateContactInput) (*ContactOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	contact, err := s.services.Contact.UpdateContact(ctx, userID, input.ID, service.UpdateContactRequest{
		FirstName:               input.Body.FirstName,
		LastName:                input.Body.LastName,
		Nickname:                input.Body.Nickname,
		Company:                 input.Body.Company,
		JobTitle:                input.Body.JobTitle,
		Email:                   input.Body.Email,
		Phone:                   input.Body.Phone,
		Notes:                   input.Body.Notes,
		Birthday:                input.Body.Birthday,
		ReminderFrequencyMonths: input.Body.ReminderFrequencyMonths,
	})
	if err != nil {
		return nil, err
	}

	return &ContactOutput{Body: mapContactWithTags(contact)}, nil
}

func (s *Server) handleDeleteContact(ctx context.Context, input *DeleteContactInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Contact.DeleteContact(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Contact deleted"}}, nil
}

// === Helpers ===

func mapContact(c *domain.Contact, tags []domain.Tag) ContactResponse {
	tagResp := make([]TagResponse, len(tags))
	for i := range tags {
		tagResp[i] = mapTag(&tags[i])
	}

	return ContactResponse{
		ID:                      c.ID,
		FirstName:               c.FirstName,
		LastName:                c.LastName,
		Nickname:                c.Nickname,
		Company:                 c.Company,
		JobTitle:                c.JobTitle,
		Email:                   c.Email,
		Phone:                   c.Phone,
		Notes:                   c.Notes,
		Birthday:                c.Birthday,
		AvatarBlurhash:          c.AvatarBlurhash,
		HasAvatar:               c.AvatarPath != "",
		LastContactDate:         c.LastContactDate,
		NextContactDate:         c.NextContactDate,
		LastResponseDate:        c.LastResponseDate,
		ReminderFrequencyMonths: c.ReminderFrequencyMonths,
		RelationshipScore:       c.RelationshipScore,
		ContactFrequencyDays:    c.ContactFrequencyDays,
		ContactTrend:            c.ContactTrend,
		Tags:                    tagResp,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

func mapContactWithTags(c *domain.ContactWithTags) ContactResponse {
	return mapContact(&c.Contact, c.Tags)
}
