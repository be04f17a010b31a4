// Package relationship holds the derived-state core: reminder scheduling and
// the metrics recompute. Everything here is pure computation over domain
// values so it can be tested without a database.
package relationship

import (
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/errors"
)

// ScheduleOptions controls how an interaction affects the reminder schedule.
// ResetReminder is a write-time flag only, it is never persisted with the log.
type ScheduleOptions struct {
	// ResetReminder reschedules the next contact date from the log's date.
	// When false the existing schedule is left untouched, which lets users
	// backfill historical interactions without disturbing their reminders.
	ResetReminder bool

	// FrequencyOverride replaces the contact's reminder cadence (in months)
	// for this and future reminders. Nil keeps the current cadence.
	FrequencyOverride *int
}

// ApplyInteraction updates a contact's schedule fields for a newly logged
// interaction. It always advances LastContactDate, advances LastResponseDate
// only when the contact responded, and reschedules the next reminder when
// opts.ResetReminder is set.
//
// The caller is responsible for persisting the contact and log atomically and
// for running the metrics recompute afterwards.
func ApplyInteraction(c *domain.Contact, log domain.ContactLog, opts ScheduleOptions) error {
	if log.ContactDate.IsZero() {
		return errors.Validation("contact date is required")
	}
	frequency := c.ReminderFrequencyMonths
	if opts.FrequencyOverride != nil {
		frequency = *opts.FrequencyOverride
	}
	if opts.ResetReminder && frequency <= 0 {
		return errors.Validationf("reminder frequency must be a positive number of months, got %d", frequency)
	}

	d := log.ContactDate
	c.LastContactDate = &d
	if log.GotResponse {
		r := log.ContactDate
		if log.ResponseDate != nil {
			r = *log.ResponseDate
		}
		c.LastResponseDate = &r
	}

	if !opts.ResetReminder {
		return nil
	}

	next := AddMonths(log.ContactDate, frequency)
	c.NextContactDate = &next
	c.ReminderFrequencyMonths = frequency
	return nil
}

// AddMonths advances t by the given number of calendar months, clamping to
// the last day of the target month when the source day doesn't exist there.
// Jan 31 + 1 month lands on Feb 28 (or 29), not Mar 2 or 3, which is what
// time.AddDate would produce.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// Normalize to the first of the target month, then clamp the day.
	first := time.Date(year, month, 1, hour, min, sec, t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
