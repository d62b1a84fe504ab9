// Package tickers persists the organizational ticker strings shown by the
// voice server's access-control layer. Entries are upserted whenever an
// account references the subject and never deleted; stale rows are harmless.
package tickers

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

func (r *PostgresRepository) Upsert(ctx context.Context, filter, text string) error {

	query :=
		`INSERT INTO ticker (filter, text)
		 VALUES ($1, $2)
		 ON CONFLICT (filter) DO UPDATE SET text = EXCLUDED.text
		 `

	_, err := r.db.ExecContext(ctx, query, filter, text)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
