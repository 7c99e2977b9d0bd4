package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/davquintana/contactbook-backend/internal/metrics"
	"github.com/davquintana/contactbook-backend/internal/models"
	repo "github.com/davquintana/contactbook-backend/internal/repository"
	"github.com/davquintana/contactbook-backend/internal/worker"
)

type ContactService struct {
	contacts repo.Contacts
	users    repo.Users
	aud      auditor
}

func NewContactService(contacts repo.Contacts, users repo.Users, logs repo.AuditLogs, wp *worker.Pool) *ContactService {
	return &ContactService{
		contacts: contacts,
		users:    users,
		aud:      auditor{logs: logs, wp: wp},
	}
}

// Add appends a contact to the user's collection. The owner handle is always
// taken from the resolved user, whatever the client sent.
func (s *ContactService) Add(ctx context.Context, userID string, c models.Contact) (models.Contact, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.Contact{}, fromRepo(err)
	}
	if strings.TrimSpace(c.Surname) == "" || strings.TrimSpace(c.GivenName) == "" || strings.TrimSpace(c.Email) == "" {
		return models.Contact{}, fmt.Errorf("%w: apellido, nombre and email required", ErrInvalid)
	}

	c.ID = ""
	c.UserID = u.ID
	c.Owner = u.Handle

	created, err := s.contacts.Add(ctx, c)
	if err != nil {
		return models.Contact{}, fromRepo(err)
	}
	metrics.ContactOps.WithLabelValues("add").Inc()
	s.aud.record("contact", created.ID, "created", map[string]any{"propietario": created.Owner})
	return created, nil
}

// ListVisible is the aggregation query: the user's own locally-visible
// contacts first, then every public+visible contact across the whole user
// base. A contact qualifying under both halves (the owner's own public
// contacts) appears once; the result is deduplicated by id.
func (s *ContactService) ListVisible(ctx context.Context, userID string) ([]models.Contact, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fromRepo(err)
	}

	own, err := s.contacts.ListOwnVisible(ctx, userID)
	if err != nil {
		return nil, fromRepo(err)
	}
	pub, err := s.contacts.ListPublicVisible(ctx)
	if err != nil {
		return nil, fromRepo(err)
	}

	seen := make(map[string]struct{}, len(own)+len(pub))
	out := make([]models.Contact, 0, len(own)+len(pub))
	for _, c := range own {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	for _, c := range pub {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// Update merges a partial patch over the stored contact. Missing user and
// missing contact are distinct causes but both surface as not found. The
// stored owner is never touched: ContactPatch carries no owner field.
func (s *ContactService) Update(ctx context.Context, userID, contactID string, patch models.ContactPatch) (models.Contact, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return models.Contact{}, fromRepo(err)
	}
	updated, err := s.contacts.Update(ctx, userID, contactID, patch)
	if err != nil {
		return models.Contact{}, fromRepo(err)
	}
	metrics.ContactOps.WithLabelValues("update").Inc()
	s.aud.record("contact", updated.ID, "updated", nil)
	return updated, nil
}

// Delete removes the contact from the user's collection. An absent contact
// id is a successful no-op, matching the legacy API; an unresolved user id
// is still not found.
func (s *ContactService) Delete(ctx context.Context, userID, contactID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return fromRepo(err)
	}
	if err := s.contacts.Delete(ctx, userID, contactID); err != nil {
		return fromRepo(err)
	}
	metrics.ContactOps.WithLabelValues("delete").Inc()
	s.aud.record("contact", contactID, "deleted", nil)
	return nil
}

// SetPublic flips esPublico on a contact resolved by its global id,
// regardless of which user owns it. Administrator path.
func (s *ContactService) SetPublic(ctx context.Context, contactID string, public bool) (models.Contact, error) {
	updated, err := s.contacts.SetPublic(ctx, contactID, public)
	if err != nil {
		return models.Contact{}, fromRepo(err)
	}
	metrics.ContactOps.WithLabelValues("set_public").Inc()
	s.aud.record("contact", updated.ID, "set_public", map[string]any{"esPublico": public})
	return updated, nil
}

// ListAll returns every contact of every user, unfiltered. Administrator path.
func (s *ContactService) ListAll(ctx context.Context) ([]models.Contact, error) {
	out, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, fromRepo(err)
	}
	return out, nil
}
