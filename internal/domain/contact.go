package domain

import "time"

// DefaultReminderFrequencyMonths is the reminder cadence applied to new
// contacts when the caller doesn't pick one.
const DefaultReminderFrequencyMonths = 3

// Trend describes the direction a contact's interaction frequency is moving.
type Trend string

const (
	// TrendIncreasing means the last interactions came faster than the average gap.
	TrendIncreasing Trend = "increasing"
	// TrendStable means no clear direction, or too few logs to tell.
	TrendStable Trend = "stable"
	// TrendDecreasing means the last interactions came slower than the average gap.
	TrendDecreasing Trend = "decreasing"
)

// Valid returns true if the trend is a recognized value.
func (t Trend) Valid() bool {
	switch t {
	case TrendIncreasing, TrendStable, TrendDecreasing:
		return true
	default:
		return false
	}
}

// Contact represents a person the owner wants to keep in touch with.
//
// RelationshipScore, ContactFrequencyDays, ContactTrend and MetricsUpdatedAt
// are derived from the contact's log history and are only ever written by the
// metrics recompute, never by callers directly.
type Contact struct {
	Entity
	OwnerID   string `json:"owner_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	Company   string `json:"company,omitempty"`
	JobTitle  string `json:"job_title,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"` // Markdown

	Birthday *time.Time `json:"birthday,omitempty"`

	AvatarPath     string `json:"-"`
	AvatarBlurhash string `json:"avatar_blurhash,omitempty"`

	LastContactDate         *time.Time `json:"last_contact_date,omitempty"`
	NextContactDate         *time.Time `json:"next_contact_date,omitempty"`
	LastResponseDate        *time.Time `json:"last_response_date,omitempty"`
	ReminderFrequencyMonths int        `json:"reminder_frequency_months"`

	RelationshipScore    int        `json:"relationship_score"`
	ContactFrequencyDays int        `json:"contact_frequency_days"`
	ContactTrend         Trend      `json:"contact_trend"`
	MetricsUpdatedAt     *time.Time `json:"metrics_updated_at,omitempty"`
}

// DisplayName returns the name to show in lists: nickname if set,
// otherwise first + last.
func (c *Contact) DisplayName() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	if c.LastName != "" {
		return c.FirstName + " " + c.LastName
	}
	return c.FirstName
}

// IsDue returns true if the contact has a scheduled reminder at or before now.
func (c *Contact) IsDue(now time.Time) bool {
	return c.NextContactDate != nil && !c.NextContactDate.After(now)
}

// ContactLog records a single interaction with a contact.
//
// The reset-reminder flag a client sends alongside a log is a write-time
// parameter of the scheduling operation, not part of the log itself, so it
// does not appear here.
type ContactLog struct {
	ID           string     `json:"id"`
	ContactID    string     `json:"contact_id"`
	ContactDate  time.Time  `json:"contact_date"`
	ContactType  string     `json:"contact_type"` // free-form: call, text, meetup, ...
	Notes        string     `json:"notes,omitempty"`
	GotResponse  bool       `json:"got_response"`
	ResponseDate *time.Time `json:"response_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ContactWithTags is a contact hydrated with its tag set.
type ContactWithTags struct {
	Contact
	Tags []Tag `json:"tags"`
}

// ContactDetail is the full aggregate view of a single contact.
type ContactDetail struct {
	Contact
	Tags []Tag        `json:"tags"`
	Logs []ContactLog `json:"logs"`
}
