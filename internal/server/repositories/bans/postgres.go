// Package bans persists the denylist consulted by the voice server. Rows are
// fully derived from current group membership, so both Insert and Delete
// no-op when the row is already in the desired state.
package bans

import (
	"context"
	"fmt"

	"github.com/evetools/mumble-sync/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, filter, reason string) error {

	query :=
		`INSERT INTO ban (filter, reason_public)
		 VALUES ($1, $2)
		 ON CONFLICT (filter) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, filter, reason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, filter string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ban WHERE filter = $1`, filter)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
