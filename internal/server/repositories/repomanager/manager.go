package repomanager

import (
	"context"
	"database/sql"

	"github.com/evetools/mumble-sync/internal/dbx"
	"github.com/evetools/mumble-sync/internal/server/repositories/accounts"
	"github.com/evetools/mumble-sync/internal/server/repositories/bans"
	"github.com/evetools/mumble-sync/internal/server/repositories/tickers"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Tickers(db dbx.DBTX) tickers.Repository
	Bans(db dbx.DBTX) bans.Repository
}
