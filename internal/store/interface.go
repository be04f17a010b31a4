// Package store defines the persistence interface for the Kinship server.
package store

import (
	"context"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CountUsers(ctx context.Context) (int, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	TouchUserLogin(ctx context.Context, userID string, at time.Time) error

	// Auth Sessions
	CreateSession(ctx context.Context, sess *domain.AuthSession) error
	GetSessionByTokenHash(ctx context.Context, hash string) (*domain.AuthSession, error)
	RotateSession(ctx context.Context, sessionID, newHash string, expiresAt, usedAt time.Time) error
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Contacts
	CreateContact(ctx context.Context, c *domain.Contact) error
	GetContactByID(ctx context.Context, contactID string) (*domain.Contact, error)
	ListContacts(ctx context.Context, ownerID string) ([]*domain.Contact, error)
	ListDueContacts(ctx context.Context, ownerID string) ([]*domain.Contact, error)
	ListRecentContacts(ctx context.Context, ownerID string, limit int) ([]*domain.Contact, error)
	GetContactsByIDs(ctx context.Context, contactIDs []string) ([]*domain.Contact, error)
	UpdateContact(ctx context.Context, c *domain.Contact) error
	DeleteContact(ctx context.Context, contactID string) error
	RecordInteraction(ctx context.Context, c *domain.Contact, log *domain.ContactLog) error

	// Contact Logs
	GetContactLogByID(ctx context.Context, logID string) (*domain.ContactLog, error)
	ListContactLogs(ctx context.Context, contactID string) ([]domain.ContactLog, error)
	DeleteInteraction(ctx context.Context, c *domain.Contact, logID string) error
	CountContactLogs(ctx context.Context, contactID string) (int, error)

	// Tags
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, ownerID, slug string) (*domain.Tag, error)
	ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error)
	FindOrCreateTag(ctx context.Context, ownerID, slug string) (*domain.Tag, bool, error)
	DeleteTag(ctx context.Context, tagID string) error
	SetContactTags(ctx context.Context, contactID string, tagIDs []string) error
	GetContactTagIDs(ctx context.Context, contactID string) ([]string, error)
	ListPopularTags(ctx context.Context, ownerID string, limit int) ([]domain.TagWithCount, error)

	// Events
	CreateEvent(ctx context.Context, e *domain.CalendarEvent) error
	GetEventByID(ctx context.Context, eventID string) (*domain.CalendarEvent, error)
	ListEvents(ctx context.Context, ownerID string) ([]*domain.CalendarEvent, error)
	ListUpcomingEvents(ctx context.Context, ownerID string, from time.Time, limit int) ([]*domain.CalendarEvent, error)
	UpdateEvent(ctx context.Context, e *domain.CalendarEvent) error
	DeleteEvent(ctx context.Context, eventID string) error
	SetEventContacts(ctx context.Context, eventID string, contactIDs []string) error
	GetEventContactIDs(ctx context.Context, eventID string) ([]string, error)

	// Hydration
	GetTagsByIDs(ctx context.Context, tagIDs []string) ([]*domain.Tag, error)
	TagsForContacts(ctx context.Context, contactIDs []string) (map[string][]domain.Tag, error)
	ContactsForEvents(ctx context.Context, eventIDs []string) (map[string][]domain.Contact, error)
	HydrateContacts(ctx context.Context, contacts []*domain.Contact) ([]domain.ContactWithTags, error)
	HydrateEvents(ctx context.Context, events []*domain.CalendarEvent) ([]domain.EventWithContacts, error)
	GetContactDetail(ctx context.Context, contactID string) (*domain.ContactDetail, error)

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
