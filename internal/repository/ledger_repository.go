package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/trackside/internal/database"
	"github.com/yourusername/trackside/internal/models"
)

// PostgresLedgerRepository implements LedgerRepository for PostgreSQL.
type PostgresLedgerRepository struct {
	db *database.DB
}

// NewPostgresLedgerRepository creates a new ledger repository
func NewPostgresLedgerRepository(db *database.DB) LedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

// Save upserts the full ledger snapshot in one statement.
func (r *PostgresLedgerRepository) Save(ctx context.Context, state *models.LedgerState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger state: %w", err)
	}

	query := `
		INSERT INTO ledgers (id, version, state, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET version = $2, state = $3, updated_at = now()
	`
	if _, err := r.db.GetPool().Exec(ctx, query, state.ID, state.Version, payload); err != nil {
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}
	return nil
}

// GetByID retrieves the latest ledger snapshot
func (r *PostgresLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerState, error) {
	query := `SELECT state FROM ledgers WHERE id = $1`

	var payload []byte
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	state := &models.LedgerState{}
	if err := json.Unmarshal(payload, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger state: %w", err)
	}
	return state, nil
}

// Delete removes a ledger snapshot
func (r *PostgresLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.GetPool().Exec(ctx, `DELETE FROM ledgers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	return nil
}
