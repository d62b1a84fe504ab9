package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evetools/mumble-sync/internal/common"
	"github.com/evetools/mumble-sync/internal/dbx"
	"github.com/evetools/mumble-sync/internal/server/models"
)

const usernameUniqueIndex = "account_username_lower_idx"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {

	query :=
		`INSERT INTO account (character_id, character_name, corporation_id, corporation_name,
		     alliance_id, alliance_name, mumble_username, mumble_password, groups,
		     owner_hash, mumble_fullname, account_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.CharacterID, a.CharacterName, a.CorporationID, a.CorporationName,
		a.AllianceID, a.AllianceName, a.Username, a.Password, a.Groups,
		a.OwnerHash, a.DisplayName, a.Active)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == usernameUniqueIndex {
			return ErrUsernameTaken
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Update persists the sync result for one account. Empty name fields keep
// their stored value, mirroring the host sometimes supplying partial data.
func (r *PostgresRepository) Update(ctx context.Context, p *UpdateParams) error {

	query :=
		`UPDATE account
		 SET character_name = COALESCE(NULLIF($2, ''), character_name),
		     corporation_id = $3, corporation_name = $4,
		     alliance_id = $5, alliance_name = $6,
		     mumble_username = COALESCE(NULLIF($7, ''), mumble_username),
		     mumble_fullname = COALESCE(NULLIF($8, ''), mumble_fullname),
		     groups = $9,
		     avatar = CASE WHEN $10 THEN $11 ELSE avatar END,
		     account_active = $12,
		     updated_at = now()
		 WHERE character_id = $1
		 `

	_, err := r.db.ExecContext(ctx, query,
		p.CharacterID, p.CharacterName, p.CorporationID, p.CorporationName,
		p.AllianceID, p.AllianceName, p.Username, p.DisplayName, p.Groups,
		p.SetAvatar, p.Avatar, p.Active)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, characterID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM account WHERE character_id = $1`, characterID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByCharacterIDs(ctx context.Context, ids []int64) ([]*models.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT character_id, mumble_username, mumble_password, mumble_fullname, owner_hash, account_active
		 FROM account
		 WHERE character_id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		a := &models.Account{}
		if err := rows.Scan(&a.CharacterID, &a.Username, &a.Password, &a.DisplayName, &a.OwnerHash, &a.Active); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetUsername(ctx context.Context, characterID int64) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		`SELECT mumble_username FROM account WHERE character_id = $1`, characterID).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return username, nil
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM account WHERE LOWER(mumble_username) = LOWER($1)`, username).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) UpdateOwner(ctx context.Context, characterID int64, ownerHash, password string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE account SET owner_hash = $2, mumble_password = $3 WHERE character_id = $1`,
		characterID, ownerHash, password)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, characterID int64, password string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE account SET mumble_password = $2 WHERE character_id = $1`,
		characterID, password)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AllCharacterIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT character_id FROM account ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}
