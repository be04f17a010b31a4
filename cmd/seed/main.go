// Package main provides a tool to seed the database with sample relationship data.
//
// This creates a demo owner account (unless one exists), a spread of contacts
// with tags, backdated interaction histories and a few upcoming events, so the
// dashboard and reminder features have something to show.
//
// Usage:
//
//	DB_PATH=~/Kinship/kinship.db go run ./cmd/seed
//	DB_PATH=~/Kinship/kinship.db go run ./cmd/seed --contacts 25
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/kinshipapp/kinship-server/internal/auth"
	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/id"
	"github.com/kinshipapp/kinship-server/internal/relationship"
	"github.com/kinshipapp/kinship-server/internal/store/sqlite"
	"github.com/kinshipapp/kinship-server/internal/util"
)

var numContacts = flag.Int("contacts", 12, "Number of sample contacts to create")

var firstNames = []string{
	"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald",
	"Radia", "Ken", "Dennis", "Frances", "Leslie", "Tim",
	"Margaret", "John", "Katherine", "Vint",
}

var lastNames = []string{
	"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Knuth",
	"Perlman", "Thompson", "Ritchie", "Allen", "Lamport", "Berners-Lee",
	"Hamilton", "McCarthy", "Johnson", "Cerf",
}

var tagNames = []string{"Family", "Work", "Old Friends", "Neighbors", "Climbing"}

var contactTypes = []string{"call", "text", "meetup", "email"}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Kinship/kinship.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ownerID, err := ensureOwner(ctx, s)
	if err != nil {
		log.Fatalf("Failed to ensure owner account: %v", err)
	}

	tagIDs, err := seedTags(ctx, s, ownerID)
	if err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}

	contacts, err := seedContacts(ctx, s, rng, ownerID, tagIDs)
	if err != nil {
		log.Fatalf("Failed to seed contacts: %v", err)
	}

	if err := seedEvents(ctx, s, rng, ownerID, contacts); err != nil {
		log.Fatalf("Failed to seed events: %v", err)
	}

	fmt.Printf("\nDone. Seeded %d contacts for user %s\n", len(contacts), ownerID)
	fmt.Println("Remember to delete the search index directory so the server reindexes on next start.")
}

// ensureOwner returns the first existing user, or creates a demo owner.
func ensureOwner(ctx context.Context, s *sqlite.Store) (string, error) {
	userIDs, err := s.ListUserIDs(ctx)
	if err != nil {
		return "", err
	}
	if len(userIDs) > 0 {
		fmt.Printf("Using existing user: %s\n", userIDs[0])
		return userIDs[0], nil
	}

	hash, err := auth.HashPassword("demo-password")
	if err != nil {
		return "", err
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return "", err
	}

	now := time.Now()
	user := &domain.User{
		Entity:       domain.Entity{ID: userID, CreatedAt: now, UpdatedAt: now},
		Email:        "demo@example.com",
		PasswordHash: hash,
		DisplayName:  "Demo Owner",
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return "", err
	}

	fmt.Println("Created demo owner: demo@example.com / demo-password")
	return userID, nil
}

func seedTags(ctx context.Context, s *sqlite.Store, ownerID string) ([]string, error) {
	tagIDs := make([]string, 0, len(tagNames))
	for _, name := range tagNames {
		slug := util.NormalizeTagSlug(name)
		tag, created, err := s.FindOrCreateTag(ctx, ownerID, slug)
		if err != nil {
			return nil, err
		}
		if created {
			fmt.Printf("Created tag: %s\n", slug)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return tagIDs, nil
}

func seedContacts(ctx context.Context, s *sqlite.Store, rng *rand.Rand, ownerID string, tagIDs []string) ([]*domain.Contact, error) {
	now := time.Now()
	contacts := make([]*domain.Contact, 0, *numContacts)

	for n := 0; n < *numContacts; n++ {
		contactID, err := id.Generate(id.PrefixContact)
		if err != nil {
			return nil, err
		}

		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]

		// Cadence varies so some contacts land due, some upcoming, some quiet
		frequency := 1 + rng.Intn(6)

		contact := &domain.Contact{
			Entity:                  domain.Entity{ID: contactID, CreatedAt: now, UpdatedAt: now},
			OwnerID:                 ownerID,
			FirstName:               first,
			LastName:                last,
			Email:                   fmt.Sprintf("%s.%s@example.com", util.NormalizeTagSlug(first), util.NormalizeTagSlug(last)),
			ReminderFrequencyMonths: frequency,
			ContactTrend:            domain.TrendStable,
		}

		if err := s.CreateContact(ctx, contact); err != nil {
			return nil, err
		}

		// One or two tags each
		picked := []string{tagIDs[rng.Intn(len(tagIDs))]}
		if rng.Float32() > 0.5 {
			other := tagIDs[rng.Intn(len(tagIDs))]
			if other != picked[0] {
				picked = append(picked, other)
			}
		}
		if err := s.SetContactTags(ctx, contactID, picked); err != nil {
			return nil, err
		}

		if err := seedInteractions(ctx, s, rng, contact); err != nil {
			return nil, err
		}

		fmt.Printf("Created contact: %s %s (every %d months, score %d)\n",
			first, last, frequency, contact.RelationshipScore)

		contacts = append(contacts, contact)
	}

	return contacts, nil
}

// seedInteractions backdates 2-6 interactions for a contact, walking forward
// in time so the schedule and derived metrics come out the same way the API
// would produce them.
func seedInteractions(ctx context.Context, s *sqlite.Store, rng *rand.Rand, contact *domain.Contact) error {
	numLogs := 2 + rng.Intn(5)

	// Start far enough back that the gaps roughly match the cadence
	gapDays := contact.ReminderFrequencyMonths * 30
	when := time.Now().AddDate(0, 0, -gapDays*numLogs)

	var history []domain.ContactLog

	for n := 0; n < numLogs; n++ {
		logID, err := id.Generate(id.PrefixLog)
		if err != nil {
			return err
		}

		gotResponse := rng.Float32() > 0.3
		entry := domain.ContactLog{
			ID:          logID,
			ContactID:   contact.ID,
			ContactDate: when,
			ContactType: contactTypes[rng.Intn(len(contactTypes))],
			GotResponse: gotResponse,
			CreatedAt:   when,
		}
		if gotResponse {
			responded := when.AddDate(0, 0, rng.Intn(3))
			entry.ResponseDate = &responded
		}

		opts := relationship.ScheduleOptions{ResetReminder: true}
		if err := relationship.ApplyInteraction(contact, entry, opts); err != nil {
			return err
		}

		history = append(history, entry)
		if derived, ok := relationship.Recompute(history, contact.ReminderFrequencyMonths, time.Now()); ok {
			contact.RelationshipScore = derived.RelationshipScore
			contact.ContactFrequencyDays = derived.ContactFrequencyDays
			contact.ContactTrend = derived.ContactTrend
		}
		contact.Touch()

		if err := s.RecordInteraction(ctx, contact, &entry); err != nil {
			return err
		}

		// Next interaction lands near the cadence with some jitter
		jitter := rng.Intn(gapDays/2+1) - gapDays/4
		when = when.AddDate(0, 0, gapDays+jitter)
		if !when.Before(time.Now()) {
			break
		}
	}

	return nil
}

func seedEvents(ctx context.Context, s *sqlite.Store, rng *rand.Rand, ownerID string, contacts []*domain.Contact) error {
	titles := []string{"Coffee catch-up", "Birthday dinner", "Climbing session", "Video call"}
	now := time.Now()

	for n, title := range titles {
		if len(contacts) == 0 {
			break
		}

		eventID, err := id.Generate(id.PrefixEvent)
		if err != nil {
			return err
		}

		start := now.AddDate(0, 0, 2+n*3).Truncate(time.Hour)
		end := start.Add(time.Hour)
		reminder := 60

		event := &domain.CalendarEvent{
			Entity:          domain.Entity{ID: eventID, CreatedAt: now, UpdatedAt: now},
			OwnerID:         ownerID,
			Title:           title,
			StartDate:       start,
			EndDate:         &end,
			ReminderMinutes: &reminder,
		}
		if err := s.CreateEvent(ctx, event); err != nil {
			return err
		}

		guest := contacts[rng.Intn(len(contacts))]
		if err := s.SetEventContacts(ctx, eventID, []string{guest.ID}); err != nil {
			return err
		}

		fmt.Printf("Created event: %s on %s with %s\n",
			title, start.Format("2006-01-02"), guest.FirstName)
	}

	return nil
}
