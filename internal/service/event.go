package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	domainerrors "github.com/kinshipapp/kinship-server/internal/errors"
	"github.com/kinshipapp/kinship-server/internal/id"
	"github.com/kinshipapp/kinship-server/internal/store"
	"github.com/kinshipapp/kinship-server/internal/util"
)

// EventService orchestrates calendar events and their contact links.
type EventService struct {
	store  store.Store
	logger *slog.Logger
}

// NewEventService creates a new event service.
func NewEventService(store store.Store, logger *slog.Logger) *EventService {
	return &EventService{
		store:  store,
		logger: logger,
	}
}

// EventRequest contains the data for creating or replacing an event.
type EventRequest struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description"`
	Location        string     `json:"location" validate:"max=200"`
	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         *time.Time `json:"end_date"`
	ReminderMinutes *int       `json:"reminder_minutes" validate:"omitempty,min=0"`
	ContactIDs      []string   `json:"contact_ids"`
}

// CreateEvent creates an event and links the given contacts to it.
func (s *EventService) CreateEvent(ctx context.Context, ownerID string, req EventRequest) (*domain.EventWithContacts, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := validateEventDates(req); err != nil {
		return nil, err
	}

	contacts, contactIDs, err := s.resolveContacts(ctx, ownerID, req.ContactIDs)
	if err != nil {
		return nil, err
	}

	eventID, err := id.Generate(id.PrefixEvent)
	if err != nil {
		return nil, fmt.Errorf("generate event ID: %w", err)
	}

	event := &domain.CalendarEvent{
		Entity: domain.Entity{
			ID: eventID,
		},
		OwnerID:         ownerID,
		Title:           req.Title,
		Description:     util.NormalizeNotes(req.Description),
		Location:        req.Location,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		ReminderMinutes: req.ReminderMinutes,
	}
	event.InitTimestamps()

	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if err := s.store.SetEventContacts(ctx, eventID, contactIDs); err != nil {
		return nil, fmt.Errorf("set event contacts: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Event created",
			"event_id", eventID,
			"owner_id", ownerID,
			"contacts", len(contacts),
		)
	}

	return &domain.EventWithContacts{CalendarEvent: *event, Contacts: contacts}, nil
}

// GetEvent returns one event with its linked contacts.
func (s *EventService) GetEvent(ctx context.Context, ownerID, eventID string) (*domain.EventWithContacts, error) {
	event, err := s.ownedEvent(ctx, ownerID, eventID)
	if err != nil {
		return nil, err
	}

	hydrated, err := s.store.HydrateEvents(ctx, []*domain.CalendarEvent{event})
	if err != nil {
		return nil, fmt.Errorf("hydrate event: %w", err)
	}
	return &hydrated[0], nil
}

// ListEvents returns all of the owner's events with their contacts.
func (s *EventService) ListEvents(ctx context.Context, ownerID string) ([]domain.EventWithContacts, error) {
	events, err := s.store.ListEvents(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.store.HydrateEvents(ctx, events)
}

// ListUpcomingEvents returns the owner's next events starting at or after
// now, soonest first.
func (s *EventService) ListUpcomingEvents(ctx context.Context, ownerID string, now time.Time, limit int) ([]domain.EventWithContacts, error) {
	if limit <= 0 {
		limit = 10
	}
	events, err := s.store.ListUpcomingEvents(ctx, ownerID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return s.store.HydrateEvents(ctx, events)
}

// UpdateEvent replaces an event and its contact links.
func (s *EventService) UpdateEvent(ctx context.Context, ownerID, eventID string, req EventRequest) (*domain.EventWithContacts, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := validateEventDates(req); err != nil {
		return nil, err
	}

	event, err := s.ownedEvent(ctx, ownerID, eventID)
	if err != nil {
		return nil, err
	}

	contacts, contactIDs, err := s.resolveContacts(ctx, ownerID, req.ContactIDs)
	if err != nil {
		return nil, err
	}

	event.Title = req.Title
	event.Description = util.NormalizeNotes(req.Description)
	event.Location = req.Location
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.ReminderMinutes = req.ReminderMinutes
	event.Touch()

	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if err := s.store.SetEventContacts(ctx, eventID, contactIDs); err != nil {
		return nil, fmt.Errorf("set event contacts: %w", err)
	}

	return &domain.EventWithContacts{CalendarEvent: *event, Contacts: contacts}, nil
}

// DeleteEvent removes an event and its contact links.
func (s *EventService) DeleteEvent(ctx context.Context, ownerID, eventID string) error {
	if _, err := s.ownedEvent(ctx, ownerID, eventID); err != nil {
		return err
	}

	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Event deleted", "event_id", eventID)
	}

	return nil
}

// resolveContacts validates that every referenced contact exists and
// belongs to the owner. It runs before any event write so a bad contact
// ID leaves nothing behind.
func (s *EventService) resolveContacts(ctx context.Context, ownerID string, contactIDs []string) ([]domain.Contact, []string, error) {
	if len(contactIDs) == 0 {
		return []domain.Contact{}, nil, nil
	}

	found, err := s.store.GetContactsByIDs(ctx, contactIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load contacts: %w", err)
	}

	byID := make(map[string]*domain.Contact, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	contacts := make([]domain.Contact, 0, len(contactIDs))
	ids := make([]string, 0, len(contactIDs))
	seen := make(map[string]bool, len(contactIDs))
	for _, contactID := range contactIDs {
		if seen[contactID] {
			continue
		}
		seen[contactID] = true

		c, ok := byID[contactID]
		if !ok || c.OwnerID != ownerID {
			return nil, nil, domainerrors.Validationf("unknown contact: %s", contactID)
		}
		contacts = append(contacts, *c)
		ids = append(ids, contactID)
	}

	return contacts, ids, nil
}

// ownedEvent loads an event and verifies it belongs to the owner.
func (s *EventService) ownedEvent(ctx context.Context, ownerID, eventID string) (*domain.CalendarEvent, error) {
	event, err := s.store.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("event not found")
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, domainerrors.NotFound("event not found")
	}
	return event, nil
}

func validateEventDates(req EventRequest) error {
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return domainerrors.Validation("end_date must not be before start_date")
	}
	return nil
}
