// Package memory is a mutex-guarded in-memory implementation of the
// repository interfaces. It backs local development (DATABASE_URL=memory)
// and the test suite; semantics mirror the postgres implementation,
// including the error sentinels.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/davquintana/contactbook-backend/internal/models"
	"github.com/davquintana/contactbook-backend/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	users    []models.User
	contacts []models.Contact
	audits   []models.AuditLog
}

func NewStore() *Store { return &Store{} }

type Repositories struct {
	Users     repository.Users
	Contacts  repository.Contacts
	AuditLogs repository.AuditLogs
}

func NewRepositories(s *Store) Repositories {
	return Repositories{
		Users:     &usersRepo{s},
		Contacts:  &contactsRepo{s},
		AuditLogs: &auditLogsRepo{s},
	}
}

// ---------- users ----------

type usersRepo struct{ s *Store }

func (r *usersRepo) Create(_ context.Context, handle, email, hash, role string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Handle == handle || u.Email == email {
			return models.User{}, repository.ErrConflict
		}
	}
	now := time.Now()
	u := models.User{
		ID:           uuid.NewString(),
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users = append(r.s.users, u)
	return u, nil
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r *usersRepo) GetByHandleOrEmail(_ context.Context, handleOrEmail string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Handle == handleOrEmail || u.Email == handleOrEmail {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r *usersRepo) UpdateProfile(_ context.Context, id, handle, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID != id && (u.Handle == handle || u.Email == email) {
			return models.User{}, repository.ErrConflict
		}
	}
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			r.s.users[i].Handle = handle
			r.s.users[i].Email = email
			r.s.users[i].UpdatedAt = time.Now()
			return r.s.users[i], nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r *usersRepo) Exists(_ context.Context, handle, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Handle == handle || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ---------- contacts ----------

type contactsRepo struct{ s *Store }

func (r *contactsRepo) Add(_ context.Context, c models.Contact) (models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.contacts = append(r.s.contacts, c)
	return c, nil
}

func (r *contactsRepo) Get(_ context.Context, userID, contactID string) (models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contacts {
		if c.ID == contactID && c.UserID == userID {
			return c, nil
		}
	}
	return models.Contact{}, repository.ErrNotFound
}

func (r *contactsRepo) Update(_ context.Context, userID, contactID string, p models.ContactPatch) (models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.contacts {
		if r.s.contacts[i].ID == contactID && r.s.contacts[i].UserID == userID {
			p.Apply(&r.s.contacts[i])
			r.s.contacts[i].UpdatedAt = time.Now()
			return r.s.contacts[i], nil
		}
	}
	return models.Contact{}, repository.ErrNotFound
}

func (r *contactsRepo) Delete(_ context.Context, userID, contactID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.contacts[:0]
	for _, c := range r.s.contacts {
		if c.ID == contactID && c.UserID == userID {
			continue
		}
		kept = append(kept, c)
	}
	r.s.contacts = kept
	return nil
}

func (r *contactsRepo) ListOwnVisible(_ context.Context, userID string) ([]models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Contact
	for _, c := range r.s.contacts {
		if c.UserID == userID && c.Visible {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *contactsRepo) ListPublicVisible(_ context.Context) ([]models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Contact
	for _, c := range r.s.contacts {
		if c.Public && c.Visible {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *contactsRepo) ListAll(_ context.Context) ([]models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Contact, len(r.s.contacts))
	copy(out, r.s.contacts)
	return out, nil
}

func (r *contactsRepo) SetPublic(_ context.Context, contactID string, public bool) (models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.contacts {
		if r.s.contacts[i].ID == contactID {
			r.s.contacts[i].Public = public
			r.s.contacts[i].UpdatedAt = time.Now()
			return r.s.contacts[i], nil
		}
	}
	return models.Contact{}, repository.ErrNotFound
}

// ---------- audit logs ----------

type auditLogsRepo struct{ s *Store }

func (r *auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now()
	r.s.audits = append(r.s.audits, l)
	return nil
}

// AuditCount is a test hook.
func (s *Store) AuditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audits)
}
