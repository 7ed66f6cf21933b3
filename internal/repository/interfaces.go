// Package repository persists session aggregates as whole snapshots:
// every mutation replaces the stored state in a single atomic write.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/trackside/internal/models"
)

// LedgerRepository stores bankroll ledger snapshots.
type LedgerRepository interface {
	Save(ctx context.Context, state *models.LedgerState) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerState, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRepository stores day-session snapshots.
type SessionRepository interface {
	Save(ctx context.Context, session *models.DaySession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DaySession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
