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

// PostgresSessionRepository implements SessionRepository for PostgreSQL.
type PostgresSessionRepository struct {
	db *database.DB
}

// NewPostgresSessionRepository creates a new day-session repository
func NewPostgresSessionRepository(db *database.DB) SessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Save upserts the full day-session snapshot in one statement.
func (r *PostgresSessionRepository) Save(ctx context.Context, session *models.DaySession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal day session: %w", err)
	}

	query := `
		INSERT INTO day_sessions (id, version, state, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET version = $2, state = $3, updated_at = now()
	`
	if _, err := r.db.GetPool().Exec(ctx, query, session.ID, session.Version, payload); err != nil {
		return fmt.Errorf("failed to save day session snapshot: %w", err)
	}
	return nil
}

// GetByID retrieves the latest day-session snapshot
func (r *PostgresSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DaySession, error) {
	query := `SELECT state FROM day_sessions WHERE id = $1`

	var payload []byte
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get day session: %w", err)
	}

	session := &models.DaySession{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal day session: %w", err)
	}
	return session, nil
}

// Delete removes a day-session snapshot
func (r *PostgresSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.GetPool().Exec(ctx, `DELETE FROM day_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete day session: %w", err)
	}
	return nil
}
