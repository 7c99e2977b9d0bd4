package repository

import (
	"context"
	"errors"

	"github.com/davquintana/contactbook-backend/internal/models"
)

// Storage-level sentinels. Implementations translate driver errors into
// these so the service layer never sees pgx details.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Users interface {
	Create(ctx context.Context, handle, email, passwordHash, role string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	// GetByHandleOrEmail matches either the handle or the email exactly.
	GetByHandleOrEmail(ctx context.Context, handleOrEmail string) (models.User, error)
	UpdateProfile(ctx context.Context, id, handle, email string) (models.User, error)
	// Exists reports whether any user already holds the handle OR the email.
	Exists(ctx context.Context, handle, email string) (bool, error)
}

type Contacts interface {
	Add(ctx context.Context, c models.Contact) (models.Contact, error)
	Get(ctx context.Context, userID, contactID string) (models.Contact, error)
	// Update applies a partial patch atomically and returns the merged row.
	Update(ctx context.Context, userID, contactID string, patch models.ContactPatch) (models.Contact, error)
	// Delete is a no-op (nil error) when the contact id is absent.
	Delete(ctx context.Context, userID, contactID string) error
	ListOwnVisible(ctx context.Context, userID string) ([]models.Contact, error)
	ListPublicVisible(ctx context.Context) ([]models.Contact, error)
	ListAll(ctx context.Context) ([]models.Contact, error)
	// SetPublic resolves the contact by its globally-unique id, across all users.
	SetPublic(ctx context.Context, contactID string, public bool) (models.Contact, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
