package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/davquintana/contactbook-backend/internal/models"
	repo "github.com/davquintana/contactbook-backend/internal/repository"
	"github.com/davquintana/contactbook-backend/internal/worker"
)

// auditor appends audit rows off the request path through the worker pool.
type auditor struct {
	logs repo.AuditLogs
	wp   *worker.Pool
}

func (a auditor) record(entityType, entityID, action string, details map[string]any) {
	if a.logs == nil {
		return
	}
	l := models.AuditLog{
		EntityType: entityType,
		Action:     action,
		Details:    details,
	}
	if entityID != "" {
		l.EntityID = &entityID
	}
	write := func() {
		// The request context may already be gone by the time the job runs.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.logs.Create(ctx, l); err != nil {
			slog.Error("audit write", "action", action, "err", err)
		}
	}
	if a.wp != nil {
		a.wp.Submit(write)
		return
	}
	write()
}
