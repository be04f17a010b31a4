package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/store"
)

func TestCreateAndGetContact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	birthday := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	c := &domain.Contact{
		OwnerID:                 "user-1",
		FirstName:               "Maya",
		LastName:                "Okafor",
		Nickname:                "May",
		Company:                 "Acme",
		Email:                   "maya@example.com",
		Notes:                   "Met at the conference.",
		Birthday:                &birthday,
		ReminderFrequencyMonths: 3,
		ContactTrend:            domain.TrendStable,
	}
	c.ID = "con-1"
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.CreateContact(ctx, c); err != nil {
		t.Fatalf("CreateContact: %v", err)
	}

	got, err := s.GetContactByID(ctx, "con-1")
	if err != nil {
		t.Fatalf("GetContactByID: %v", err)
	}

	if got.FirstName != "Maya" || got.LastName != "Okafor" {
		t.Errorf("name: got %q %q", got.FirstName, got.LastName)
	}
	if got.Nickname != "May" {
		t.Errorf("Nickname: got %q", got.Nickname)
	}
	if got.Birthday == nil || got.Birthday.Format("2006-01-02") != "1990-06-15" {
		t.Errorf("Birthday: got %v", got.Birthday)
	}
	if got.ReminderFrequencyMonths != 3 {
		t.Errorf("ReminderFrequencyMonths: got %d", got.ReminderFrequencyMonths)
	}
	if got.ContactTrend != domain.TrendStable {
		t.Errorf("ContactTrend: got %q", got.ContactTrend)
	}
	// Nullable schedule fields start unset.
	if got.LastContactDate != nil || got.NextContactDate != nil || got.LastResponseDate != nil {
		t.Errorf("schedule fields should be nil on a fresh contact")
	}
}

func TestGetContactNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetContactByID(context.Background(), "con-missing")
	if err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListContactsScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	makeTestUser(t, s, "user-2")

	makeTestContact(t, s, "con-1", "user-1", "Zoe")
	makeTestContact(t, s, "con-2", "user-1", "Alan")
	makeTestContact(t, s, "con-3", "user-2", "Bea")

	contacts, err := s.ListContacts(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
	// Sorted by first name.
	if contacts[0].FirstName != "Alan" || contacts[1].FirstName != "Zoe" {
		t.Errorf("order: got %q, %q", contacts[0].FirstName, contacts[1].FirstName)
	}
}

func TestUpdateContact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	c := makeTestContact(t, s, "con-1", "user-1", "Maya")

	next := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	c.Company = "Initech"
	c.NextContactDate = &next
	c.RelationshipScore = 72
	c.ContactTrend = domain.TrendIncreasing
	c.Touch()

	if err := s.UpdateContact(ctx, c); err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}

	got, err := s.GetContactByID(ctx, "con-1")
	if err != nil {
		t.Fatalf("GetContactByID: %v", err)
	}
	if got.Company != "Initech" {
		t.Errorf("Company: got %q", got.Company)
	}
	if got.NextContactDate == nil || !got.NextContactDate.Equal(next) {
		t.Errorf("NextContactDate: got %v", got.NextContactDate)
	}
	if got.RelationshipScore != 72 {
		t.Errorf("RelationshipScore: got %d", got.RelationshipScore)
	}
	if got.ContactTrend != domain.TrendIncreasing {
		t.Errorf("ContactTrend: got %q", got.ContactTrend)
	}
}

func TestUpdateContactNotFound(t *testing.T) {
	s := newTestStore(t)

	c := &domain.Contact{FirstName: "Ghost", ContactTrend: domain.TrendStable}
	c.ID = "con-missing"
	c.InitTimestamps()

	if err := s.UpdateContact(context.Background(), c); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordInteraction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	c := makeTestContact(t, s, "con-1", "user-1", "Maya")

	logDate := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	next := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	c.LastContactDate = &logDate
	c.LastResponseDate = &logDate
	c.NextContactDate = &next
	c.RelationshipScore = 85
	c.ContactFrequencyDays = 90
	c.Touch()

	log := &domain.ContactLog{
		ID:          "log-1",
		ContactID:   "con-1",
		ContactDate: logDate,
		ContactType: "call",
		GotResponse: true,
		CreatedAt:   time.Now(),
	}

	if err := s.RecordInteraction(ctx, c, log); err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}

	// Both the log and the contact update landed.
	logs, err := s.ListContactLogs(ctx, "con-1")
	if err != nil {
		t.Fatalf("ListContactLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if logs[0].ContactType != "call" || !logs[0].GotResponse {
		t.Errorf("log fields: got %+v", logs[0])
	}

	got, err := s.GetContactByID(ctx, "con-1")
	if err != nil {
		t.Fatalf("GetContactByID: %v", err)
	}
	if got.RelationshipScore != 85 {
		t.Errorf("RelationshipScore: got %d", got.RelationshipScore)
	}
	if got.NextContactDate == nil || !got.NextContactDate.Equal(next) {
		t.Errorf("NextContactDate: got %v", got.NextContactDate)
	}
}

func TestDeleteInteraction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	c := makeTestContact(t, s, "con-1", "user-1", "Maya")

	logDate := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	c.LastContactDate = &logDate
	c.RelationshipScore = 85
	c.Touch()

	log := &domain.ContactLog{
		ID:          "log-1",
		ContactID:   "con-1",
		ContactDate: logDate,
		ContactType: "call",
		CreatedAt:   time.Now(),
	}
	if err := s.RecordInteraction(ctx, c, log); err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}

	// The caller passes the contact already recomputed for the
	// post-delete history.
	c.RelationshipScore = 0
	c.ContactFrequencyDays = 0
	c.ContactTrend = domain.TrendStable
	c.Touch()

	if err := s.DeleteInteraction(ctx, c, "log-1"); err != nil {
		t.Fatalf("DeleteInteraction: %v", err)
	}

	// Both the log delete and the contact update landed.
	logs, err := s.ListContactLogs(ctx, "con-1")
	if err != nil {
		t.Fatalf("ListContactLogs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected 0 logs, got %d", len(logs))
	}

	got, err := s.GetContactByID(ctx, "con-1")
	if err != nil {
		t.Fatalf("GetContactByID: %v", err)
	}
	if got.RelationshipScore != 0 {
		t.Errorf("RelationshipScore: got %d", got.RelationshipScore)
	}
}

func TestDeleteInteractionUnknownLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	c := makeTestContact(t, s, "con-1", "user-1", "Maya")

	if err := s.DeleteInteraction(ctx, c, "log-missing"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordInteractionMismatchedContact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	c := makeTestContact(t, s, "con-1", "user-1", "Maya")

	log := &domain.ContactLog{
		ID:          "log-1",
		ContactID:   "con-other",
		ContactDate: time.Now(),
		ContactType: "call",
		CreatedAt:   time.Now(),
	}

	if err := s.RecordInteraction(ctx, c, log); err == nil {
		t.Fatal("expected error for mismatched contact id")
	}

	// Nothing was written.
	logs, err := s.ListContactLogs(ctx, "con-1")
	if err != nil {
		t.Fatalf("ListContactLogs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no logs, got %d", len(logs))
	}
}

func TestDeleteContactCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	c := makeTestContact(t, s, "con-1", "user-1", "Maya")

	// Two logs.
	for i, d := range []time.Time{
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
	} {
		log := &domain.ContactLog{
			ID:          "log-" + string(rune('a'+i)),
			ContactID:   "con-1",
			ContactDate: d,
			ContactType: "text",
			CreatedAt:   time.Now(),
		}
		if err := s.RecordInteraction(ctx, c, log); err != nil {
			t.Fatalf("RecordInteraction: %v", err)
		}
	}

	// Three tags.
	tagIDs := []string{}
	for _, slug := range []string{"family", "college", "book-club"} {
		tag, _, err := s.FindOrCreateTag(ctx, "user-1", slug)
		if err != nil {
			t.Fatalf("FindOrCreateTag: %v", err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.SetContactTags(ctx, "con-1", tagIDs); err != nil {
		t.Fatalf("SetContactTags: %v", err)
	}

	// One event link.
	e := &domain.CalendarEvent{
		OwnerID:   "user-1",
		Title:     "Reunion",
		StartDate: time.Date(2025, time.December, 1, 18, 0, 0, 0, time.UTC),
	}
	e.ID = "evt-1"
	e.InitTimestamps()
	if err := s.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := s.SetEventContacts(ctx, "evt-1", []string{"con-1"}); err != nil {
		t.Fatalf("SetEventContacts: %v", err)
	}

	if err := s.DeleteContact(ctx, "con-1"); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}

	// Logs and junction rows are gone.
	counts := map[string]string{
		"contact_logs":   `SELECT COUNT(*) FROM contact_logs WHERE contact_id = 'con-1'`,
		"contact_tags":   `SELECT COUNT(*) FROM contact_tags WHERE contact_id = 'con-1'`,
		"event_contacts": `SELECT COUNT(*) FROM event_contacts WHERE contact_id = 'con-1'`,
	}
	for table, query := range counts {
		var n int
		if err := s.db.QueryRow(query).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s: %d orphaned rows", table, n)
		}
	}

	// Tags and the event themselves survive.
	tags, err := s.ListTags(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 3 {
		t.Errorf("expected 3 tags to remain, got %d", len(tags))
	}
	if _, err := s.GetEventByID(ctx, "evt-1"); err != nil {
		t.Errorf("event should remain: %v", err)
	}
}

func TestListDueContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	c1 := makeTestContact(t, s, "con-1", "user-1", "Maya")
	c2 := makeTestContact(t, s, "con-2", "user-1", "Alan")
	makeTestContact(t, s, "con-3", "user-1", "Noah")

	later := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	c1.NextContactDate = &later
	c2.NextContactDate = &sooner
	for _, c := range []*domain.Contact{c1, c2} {
		if err := s.UpdateContact(ctx, c); err != nil {
			t.Fatalf("UpdateContact: %v", err)
		}
	}

	due, err := s.ListDueContacts(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListDueContacts: %v", err)
	}
	// Every contact with a scheduled reminder, soonest first. No date cutoff.
	if len(due) != 2 {
		t.Fatalf("expected 2 due contacts, got %d", len(due))
	}
	if due[0].ID != "con-2" || due[1].ID != "con-1" {
		t.Errorf("order: got %q, %q", due[0].ID, due[1].ID)
	}
}

func TestListRecentContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	dates := []time.Time{
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		c := makeTestContact(t, s, "con-"+string(rune('1'+i)), "user-1", "C")
		dd := d
		c.LastContactDate = &dd
		if err := s.UpdateContact(ctx, c); err != nil {
			t.Fatalf("UpdateContact: %v", err)
		}
	}
	// One contact never contacted.
	makeTestContact(t, s, "con-4", "user-1", "Quiet")

	recent, err := s.ListRecentContacts(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("ListRecentContacts: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(recent))
	}
	if recent[0].ID != "con-2" || recent[1].ID != "con-3" {
		t.Errorf("order: got %q, %q", recent[0].ID, recent[1].ID)
	}
}
