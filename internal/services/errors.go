package services

import (
	"errors"

	"github.com/davquintana/contactbook-backend/internal/repository"
)

// Expected-failure taxonomy surfaced to the API layer. Anything outside it
// is treated as internal and never leaks detail to the caller.
var (
	ErrInvalid      = errors.New("invalid input")
	ErrConflict     = errors.New("usuario or correo already registered")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

func fromRepo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
