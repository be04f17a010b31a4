package domain

import "time"

// CalendarEvent is an owner-scoped event, optionally linked to contacts
// (a birthday dinner, a reunion, a call that was scheduled ahead of time).
type CalendarEvent struct {
	Entity
	OwnerID         string     `json:"owner_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location,omitempty"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	ReminderMinutes *int       `json:"reminder_minutes,omitempty"`
}

// EventContact represents the many-to-many relationship between events and contacts.
type EventContact struct {
	EventID   string    `json:"event_id"`
	ContactID string    `json:"contact_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EventWithContacts is an event hydrated with its linked contacts.
type EventWithContacts struct {
	CalendarEvent
	Contacts []Contact `json:"contacts"`
}
