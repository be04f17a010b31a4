package sqlite

import (
	"context"
	"fmt"

	"github.com/kinshipapp/kinship-server/internal/domain"
)

// hydrate is the two-phase batch fetch behind every aggregate read: one
// query for all junction rows matching the primary ID set, one query for
// the distinct related entities those rows reference. The query count stays
// constant no matter how many primary rows are being hydrated.
//
// Every primary ID gets an entry in the result, an empty slice when nothing
// is linked. Junction rows pointing at a related entity that vanished
// between the two queries are skipped.
func hydrate[R any](
	ctx context.Context,
	s *Store,
	junctionTable, primaryCol, relatedCol string,
	primaryIDs []string,
	fetchRelated func(ctx context.Context, ids []string) (map[string]R, error),
) (map[string][]R, error) {
	result := make(map[string][]R, len(primaryIDs))
	for _, id := range primaryIDs {
		result[id] = []R{}
	}
	if len(primaryIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(primaryIDs))
	for i, id := range primaryIDs {
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s IN (%s)`,
		primaryCol, relatedCol, junctionTable, primaryCol, placeholders(len(primaryIDs)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", junctionTable, err)
	}
	defer rows.Close()

	type pair struct{ primaryID, relatedID string }
	var pairs []pair
	seen := make(map[string]struct{})
	var relatedIDs []string
	for rows.Next() {
		var p pair
		if err := rows.Scan(&p.primaryID, &p.relatedID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", junctionTable, err)
		}
		pairs = append(pairs, p)
		if _, ok := seen[p.relatedID]; !ok {
			seen[p.relatedID] = struct{}{}
			relatedIDs = append(relatedIDs, p.relatedID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	if len(relatedIDs) == 0 {
		return result, nil
	}

	related, err := fetchRelated(ctx, relatedIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range pairs {
		r, ok := related[p.relatedID]
		if !ok {
			continue
		}
		result[p.primaryID] = append(result[p.primaryID], r)
	}
	return result, nil
}

// GetTagsByIDs returns the tags matching the given ID set, in one query.
func (s *Store) GetTagsByIDs(ctx context.Context, tagIDs []string) ([]*domain.Tag, error) {
	if len(tagIDs) == 0 {
		return []*domain.Tag{}, nil
	}
	args := make([]any, len(tagIDs))
	for i, id := range tagIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id IN (`+placeholders(len(tagIDs))+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// TagsForContacts batch-loads the tag sets for a group of contacts.
func (s *Store) TagsForContacts(ctx context.Context, contactIDs []string) (map[string][]domain.Tag, error) {
	return hydrate(ctx, s, "contact_tags", "contact_id", "tag_id", contactIDs,
		func(ctx context.Context, ids []string) (map[string]domain.Tag, error) {
			tags, err := s.GetTagsByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			byID := make(map[string]domain.Tag, len(tags))
			for _, t := range tags {
				byID[t.ID] = *t
			}
			return byID, nil
		})
}

// ContactsForEvents batch-loads the linked contacts for a group of events.
func (s *Store) ContactsForEvents(ctx context.Context, eventIDs []string) (map[string][]domain.Contact, error) {
	return hydrate(ctx, s, "event_contacts", "event_id", "contact_id", eventIDs,
		func(ctx context.Context, ids []string) (map[string]domain.Contact, error) {
			contacts, err := s.GetContactsByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			byID := make(map[string]domain.Contact, len(contacts))
			for _, c := range contacts {
				byID[c.ID] = *c
			}
			return byID, nil
		})
}

// HydrateContacts attaches tag sets to a batch of contacts.
func (s *Store) HydrateContacts(ctx context.Context, contacts []*domain.Contact) ([]domain.ContactWithTags, error) {
	ids := make([]string, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}

	tagsByContact, err := s.TagsForContacts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ContactWithTags, len(contacts))
	for i, c := range contacts {
		out[i] = domain.ContactWithTags{Contact: *c, Tags: tagsByContact[c.ID]}
	}
	return out, nil
}

// HydrateEvents attaches contact sets to a batch of events.
func (s *Store) HydrateEvents(ctx context.Context, events []*domain.CalendarEvent) ([]domain.EventWithContacts, error) {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	contactsByEvent, err := s.ContactsForEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.EventWithContacts, len(events))
	for i, e := range events {
		out[i] = domain.EventWithContacts{CalendarEvent: *e, Contacts: contactsByEvent[e.ID]}
	}
	return out, nil
}

// GetContactDetail returns a contact with its tags and full log history.
func (s *Store) GetContactDetail(ctx context.Context, contactID string) (*domain.ContactDetail, error) {
	c, err := s.GetContactByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	tagsByContact, err := s.TagsForContacts(ctx, []string{contactID})
	if err != nil {
		return nil, err
	}

	logs, err := s.ListContactLogs(ctx, contactID)
	if err != nil {
		return nil, err
	}

	return &domain.ContactDetail{
		Contact: *c,
		Tags:    tagsByContact[contactID],
		Logs:    logs,
	}, nil
}
