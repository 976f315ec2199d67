package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"starsystem-server/internal/shared/database"
	"starsystem-server/internal/shared/errors"

	"github.com/google/uuid"
)

// PostgresStore keeps documents in the star_system_snapshots table.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO star_system_snapshots (id, star_name, document, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET star_name = EXCLUDED.star_name, document = EXCLUDED.document, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, doc.ID, doc.Star.Name, data); err != nil {
		return errors.WrapExternal("failed to save snapshot", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id uuid.UUID) (*Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM star_system_snapshots WHERE id = $1", id).Scan(&data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundf("snapshot %s not found", id)
	}
	if err != nil {
		return nil, errors.WrapExternal("failed to load snapshot", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapInternal("failed to unmarshal snapshot", err)
	}
	return &doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM star_system_snapshots WHERE id = $1", id); err != nil {
		return errors.WrapExternal("failed to delete snapshot", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Backend() string {
	return "postgres"
}
