package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evetools/mumble-sync/internal/server/models"
)

// ErrUsernameTaken is returned by Create when the case-insensitive unique
// index on the username rejects the insert. The caller is expected to
// allocate the next candidate and retry.
var ErrUsernameTaken = errors.New("username already taken")

// UpdateParams carries the mutable account fields for a sync update.
// CharacterName, Username and DisplayName are left untouched in the store
// when empty; Avatar is only written when SetAvatar is true.
type UpdateParams struct {
	CharacterID     int64
	CharacterName   string
	CorporationID   int64
	CorporationName string
	AllianceID      sql.NullInt64
	AllianceName    sql.NullString
	Username        string
	DisplayName     string
	Groups          string
	Active          bool
	Avatar          []byte
	SetAvatar       bool
}

type Repository interface {
	Create(ctx context.Context, a *models.Account) error
	Update(ctx context.Context, p *UpdateParams) error
	Delete(ctx context.Context, characterID int64) error
	GetByCharacterIDs(ctx context.Context, ids []int64) ([]*models.Account, error)
	GetUsername(ctx context.Context, characterID int64) (string, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateOwner(ctx context.Context, characterID int64, ownerHash, password string) error
	UpdatePassword(ctx context.Context, characterID int64, password string) error
	AllCharacterIDs(ctx context.Context) ([]int64, error)
}
