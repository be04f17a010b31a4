package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/store"
)

// upcomingWindowDays is how far ahead the dashboard looks for reminders
// that aren't due yet.
const upcomingWindowDays = 14

// DashboardService assembles the owner's home view: who is due for
// contact, who is coming up, recent activity, and upcoming events.
type DashboardService struct {
	store  store.Store
	events *EventService
	logger *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store store.Store, events *EventService, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		events: events,
		logger: logger,
	}
}

// Dashboard is the aggregate home view for one owner.
type Dashboard struct {
	DueContacts      []domain.ContactWithTags   `json:"due_contacts"`
	UpcomingContacts []domain.ContactWithTags   `json:"upcoming_contacts"`
	RecentContacts   []domain.ContactWithTags   `json:"recent_contacts"`
	PopularTags      []domain.TagWithCount      `json:"popular_tags"`
	UpcomingEvents   []domain.EventWithContacts `json:"upcoming_events"`
}

// GetDashboard builds the dashboard for an owner as of now.
//
// Due contacts have a reminder date at or before now; upcoming contacts
// have one within the next two weeks. Both lists are ordered soonest
// first.
func (s *DashboardService) GetDashboard(ctx context.Context, ownerID string, now time.Time) (*Dashboard, error) {
	scheduled, err := s.store.ListDueContacts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list scheduled contacts: %w", err)
	}

	windowEnd := now.AddDate(0, 0, upcomingWindowDays)
	due := make([]*domain.Contact, 0, len(scheduled))
	upcoming := make([]*domain.Contact, 0, len(scheduled))
	for _, c := range scheduled {
		switch {
		case c.IsDue(now):
			due = append(due, c)
		case c.NextContactDate.Before(windowEnd):
			upcoming = append(upcoming, c)
		}
	}

	dueHydrated, err := s.store.HydrateContacts(ctx, due)
	if err != nil {
		return nil, fmt.Errorf("hydrate due contacts: %w", err)
	}

	upcomingHydrated, err := s.store.HydrateContacts(ctx, upcoming)
	if err != nil {
		return nil, fmt.Errorf("hydrate upcoming contacts: %w", err)
	}

	recent, err := s.store.ListRecentContacts(ctx, ownerID, 5)
	if err != nil {
		return nil, fmt.Errorf("list recent contacts: %w", err)
	}
	recentHydrated, err := s.store.HydrateContacts(ctx, recent)
	if err != nil {
		return nil, fmt.Errorf("hydrate recent contacts: %w", err)
	}

	popularTags, err := s.store.ListPopularTags(ctx, ownerID, 10)
	if err != nil {
		return nil, fmt.Errorf("list popular tags: %w", err)
	}

	upcomingEvents, err := s.events.ListUpcomingEvents(ctx, ownerID, now, 5)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}

	return &Dashboard{
		DueContacts:      dueHydrated,
		UpcomingContacts: upcomingHydrated,
		RecentContacts:   recentHydrated,
		PopularTags:      popularTags,
		UpcomingEvents:   upcomingEvents,
	}, nil
}

// ListDueContacts returns every contact whose reminder is at or before
// now, soonest first.
func (s *DashboardService) ListDueContacts(ctx context.Context, ownerID string, now time.Time) ([]domain.ContactWithTags, error) {
	scheduled, err := s.store.ListDueContacts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list scheduled contacts: %w", err)
	}

	due := make([]*domain.Contact, 0, len(scheduled))
	for _, c := range scheduled {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}

	return s.store.HydrateContacts(ctx, due)
}
