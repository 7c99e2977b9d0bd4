package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/davquintana/contactbook-backend/internal/auth"
	"github.com/davquintana/contactbook-backend/internal/config"
	"github.com/davquintana/contactbook-backend/internal/metrics"
	"github.com/davquintana/contactbook-backend/internal/models"
	repo "github.com/davquintana/contactbook-backend/internal/repository"
	"github.com/davquintana/contactbook-backend/internal/worker"
)

type AccountService struct {
	r   repo.Users
	c   config.Config
	aud auditor
}

func NewAccountService(r repo.Users, logs repo.AuditLogs, wp *worker.Pool, c config.Config) *AccountService {
	return &AccountService{r: r, c: c, aud: auditor{logs: logs, wp: wp}}
}

// Register creates an account with an empty contact collection. The handle
// and email are globally unique; a clash on either is a conflict. The
// password is stored as a bcrypt hash, never plaintext.
func (s *AccountService) Register(ctx context.Context, handle, email, password string) (models.User, error) {
	u := models.User{Handle: strings.TrimSpace(handle), Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if password == "" {
		return models.User{}, fmt.Errorf("%w: contrasenia required", ErrInvalid)
	}

	taken, err := s.r.Exists(ctx, u.Handle, u.Email)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrConflict
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	role := models.RoleUser
	if s.c.AdminEmail != "" && u.Email == s.c.AdminEmail {
		role = models.RoleAdmin
	}

	created, err := s.r.Create(ctx, u.Handle, u.Email, hash, role)
	if err != nil {
		// The unique constraints close the Exists/Create race.
		return models.User{}, fromRepo(err)
	}
	metrics.RegistrationsTotal.Inc()
	s.aud.record("user", created.ID, "registered", map[string]any{"usuario": created.Handle})
	return created, nil
}

// Authenticate matches the input against either the handle or the email,
// then verifies the password. Both miss cases collapse into the same
// ErrUnauthorized so the response does not reveal which part was wrong.
func (s *AccountService) Authenticate(ctx context.Context, handleOrEmail, password string) (models.User, error) {
	u, err := s.r.GetByHandleOrEmail(ctx, strings.TrimSpace(handleOrEmail))
	if err != nil {
		if fromRepo(err) == ErrNotFound {
			metrics.LoginsTotal.WithLabelValues("unauthorized").Inc()
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		metrics.LoginsTotal.WithLabelValues("unauthorized").Inc()
		return models.User{}, ErrUnauthorized
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.aud.record("user", u.ID, "login", nil)
	return u, nil
}

// UpdateProfile overwrites the handle and email. Unlike the legacy backend
// it re-checks uniqueness: colliding with another account is a conflict.
func (s *AccountService) UpdateProfile(ctx context.Context, userID, handle, email string) (models.User, error) {
	u := models.User{Handle: strings.TrimSpace(handle), Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	updated, err := s.r.UpdateProfile(ctx, userID, u.Handle, u.Email)
	if err != nil {
		return models.User{}, fromRepo(err)
	}
	s.aud.record("user", updated.ID, "profile_updated", nil)
	return updated, nil
}
