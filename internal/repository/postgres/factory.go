package postgres

import (
	repo "github.com/davquintana/contactbook-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users     repo.Users
	Contacts  repo.Contacts
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:     &usersRepo{pool},
		Contacts:  &contactsRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
