// Package services contains the server-side business logic. This file
// implements AccountService, the synchronization engine that keeps voice
// server accounts, ticker strings and ban entries consistent with the
// identity platform's character and group data.
package services

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"

	"github.com/evetools/mumble-sync/internal/common"
	"github.com/evetools/mumble-sync/internal/dbx"
	"github.com/evetools/mumble-sync/internal/logging"
	"github.com/evetools/mumble-sync/internal/server/avatar"
	"github.com/evetools/mumble-sync/internal/server/config"
	"github.com/evetools/mumble-sync/internal/server/models"
	"github.com/evetools/mumble-sync/internal/server/nickname"
	"github.com/evetools/mumble-sync/internal/server/plugincfg"
	"github.com/evetools/mumble-sync/internal/server/repositories/accounts"
	"github.com/evetools/mumble-sync/internal/server/repositories/repomanager"
	"github.com/evetools/mumble-sync/internal/server/usernames"
)

// registerRetries bounds how often a register re-allocates after losing a
// race on the username unique index.
const registerRetries = 3

// openDB is a seam for testing the lazy connection setup.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// AccountService orchestrates account lifecycle operations. The database
// connection is opened lazily on the first operation and reused for the
// process lifetime; configuration errors surface before any storage access.
type AccountService struct {
	processCfg *config.Config
	rules      *plugincfg.Loader
	repos      repomanager.RepositoryManager
	avatars    avatar.Source
	logger     logging.Logger

	dbOnce sync.Once
	db     *sql.DB
	dbErr  error
}

// NewAccountService constructs an AccountService. The database is not opened
// here; the first operation does that.
func NewAccountService(
	cfg *config.Config,
	rules *plugincfg.Loader,
	repos repomanager.RepositoryManager,
	avatars avatar.Source,
	logger logging.Logger,
) *AccountService {
	return &AccountService{
		processCfg: cfg,
		rules:      rules,
		repos:      repos,
		avatars:    avatars,
		logger:     logger.With("module", "account_service"),
	}
}

// conn returns the cached database handle, opening it (and running
// migrations) on first use. Rules load first so that a broken configuration
// fails before the store is ever touched.
func (s *AccountService) conn(ctx context.Context) (*sql.DB, error) {
	s.dbOnce.Do(func() {
		if s.db != nil {
			return
		}

		rules, err := s.rules.Get()
		if err != nil {
			s.dbErr = err
			return
		}

		dsn := s.processCfg.DatabaseDSN
		if dsn == "" {
			dsn = os.Getenv(rules.StorageLocator)
		}

		db, err := openDB(dsn)
		if err != nil {
			s.logger.Error(ctx, "opening database", "error", err.Error())
			s.dbErr = common.ErrInternal
			return
		}

		if err := s.repos.RunMigrations(ctx, db); err != nil {
			s.logger.Error(ctx, "running migrations", "error", err.Error())
			s.dbErr = common.ErrInternal
			return
		}

		s.db = db
	})
	return s.db, s.dbErr
}

// GetAccounts returns the host-facing records for the requested characters.
// When the stored owner hash differs from the supplied one the password is
// rotated before returning: the character changed hands and the previous
// owner must not keep access. A failed rotation is logged and the stored
// password is returned unchanged rather than failing the lookup.
func (s *AccountService) GetAccounts(ctx context.Context, characters []models.Character) ([]models.AccountRecord, error) {
	if len(characters) == 0 {
		return nil, nil
	}

	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	repo := s.repos.Accounts(db)

	ownerHashes := make(map[int64]string, len(characters))
	ids := make([]int64, 0, len(characters))
	for _, c := range characters {
		ownerHashes[c.CharacterID] = c.OwnerHash
		ids = append(ids, c.CharacterID)
	}

	rows, err := repo.GetByCharacterIDs(ctx, ids)
	if err != nil {
		s.logger.Error(ctx, "fetching accounts", "error", err.Error())
		return nil, common.ErrInternal
	}

	result := make([]models.AccountRecord, 0, len(rows))
	for _, a := range rows {
		password := &a.Password
		if hash, ok := ownerHashes[a.CharacterID]; ok && hash != "" && a.OwnerHash != hash {
			if rotated := s.rotateOwner(ctx, repo, a.CharacterID, hash); rotated != nil {
				password = rotated
			}
		}

		status := models.StatusDeactivated
		if a.Active {
			status = models.StatusActive
		}
		result = append(result, models.AccountRecord{
			CharacterID: a.CharacterID,
			Username:    a.Username,
			Password:    password,
			Status:      status,
			FullName:    a.DisplayName,
		})
	}

	return result, nil
}

// rotateOwner persists a fresh password together with the new owner hash.
// Best effort: on failure nil is returned and the caller keeps the stored
// password.
func (s *AccountService) rotateOwner(ctx context.Context, repo accounts.Repository, characterID int64, newOwnerHash string) *string {
	password, err := common.GeneratePassword()
	if err != nil {
		s.logger.Error(ctx, "generating password", "error", err.Error())
		return nil
	}
	if err := repo.UpdateOwner(ctx, characterID, newOwnerHash, password); err != nil {
		s.logger.Error(ctx, "rotating owner", "character_id", characterID, "error", err.Error())
		return nil
	}
	return &password
}

// Register creates a voice-server account for the character: tickers are
// upserted, a unique username is allocated, a password generated and the
// display name rendered from the configured template.
func (s *AccountService) Register(ctx context.Context, character models.Character, groups []models.Group, emailAddress string, allCharacterIDs []int64) (*models.AccountRecord, error) {
	if character.Name == "" {
		return nil, common.ErrInvalidInput
	}

	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.Get()
	if err != nil {
		return nil, err
	}
	repo := s.repos.Accounts(db)

	s.upsertTickers(ctx, db, character)

	password, err := common.GeneratePassword()
	if err != nil {
		s.logger.Error(ctx, "generating password", "error", err.Error())
		return nil, common.ErrInternal
	}

	displayName := nickname.Render(&character, groupNameList(groups), rules)
	allocator := usernames.NewAllocator(repo)

	// The allocator pre-checks, but only the unique index is authoritative
	// under concurrent registrations; losing the race re-allocates.
	var username string
	for attempt := 0; ; attempt++ {
		username, err = allocator.Allocate(ctx, character.Name)
		if err != nil {
			s.logger.Error(ctx, "allocating username", "error", err.Error())
			return nil, common.ErrInternal
		}

		err = repo.Create(ctx, &models.Account{
			CharacterID:     character.CharacterID,
			CharacterName:   character.Name,
			CorporationID:   character.CorporationID,
			CorporationName: character.CorporationName,
			AllianceID:      nullableID(character.AllianceID),
			AllianceName:    nullableString(character.AllianceName),
			Username:        username,
			Password:        password,
			Groups:          models.GroupNames(groups),
			OwnerHash:       character.OwnerHash,
			DisplayName:     displayName,
			Active:          true,
		})
		if err == nil {
			break
		}
		if errors.Is(err, accounts.ErrUsernameTaken) && attempt < registerRetries {
			continue
		}
		s.logger.Error(ctx, "inserting account", "character_id", character.CharacterID, "error", err.Error())
		return nil, common.ErrInternal
	}

	return &models.AccountRecord{
		CharacterID: character.CharacterID,
		Username:    username,
		Password:    &password,
		Status:      models.StatusActive,
	}, nil
}

// UpdateAccount brings the stored account in line with the character's
// current state. A character no longer claimed by any player is removed
// entirely; otherwise org fields, groups, display name, active flag and the
// ban registry are recomputed.
func (s *AccountService) UpdateAccount(ctx context.Context, character models.Character, groups []models.Group, mainCharacter *models.Character) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	// Remove the account if the character no longer exists on the platform.
	if character.PlayerID == 0 {
		if err := s.repos.Accounts(db).Delete(ctx, character.CharacterID); err != nil {
			s.logger.Error(ctx, "deleting account", "character_id", character.CharacterID, "error", err.Error())
			return common.ErrInternal
		}
		return nil
	}

	rules, err := s.rules.Get()
	if err != nil {
		return err
	}

	s.upsertTickers(ctx, db, character)

	// The row update and the ban row must not diverge: both commit or
	// neither does.
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.updateAccountRow(ctx, s.repos.Accounts(tx), rules, character, groups); err != nil {
			return err
		}
		return s.reconcileBan(ctx, tx, rules, character.CharacterID, models.GroupIDs(groups))
	})
	if err != nil && !errors.Is(err, common.ErrInternal) {
		s.logger.Error(ctx, "account update transaction", "character_id", character.CharacterID, "error", err.Error())
		return common.ErrInternal
	}
	return err
}

func (s *AccountService) updateAccountRow(ctx context.Context, repo accounts.Repository, rules *plugincfg.Config, character models.Character, groups []models.Group) error {
	username, err := repo.GetUsername(ctx, character.CharacterID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error(ctx, "reading username", "character_id", character.CharacterID, "error", err.Error())
		return common.ErrInternal
	}

	// Some legacy rows carry an empty or reserved username; generate a fresh
	// one for those, keep the existing name for everyone else.
	if username == "" || usernames.Normalize(username) == usernames.Normalize(usernames.ReservedUsername) {
		allocator := usernames.NewAllocator(repo)
		username, err = allocator.Allocate(ctx, character.Name)
		if err != nil {
			s.logger.Error(ctx, "allocating username", "character_id", character.CharacterID, "error", err.Error())
			return common.ErrInternal
		}
	}

	params := &accounts.UpdateParams{
		CharacterID:     character.CharacterID,
		CharacterName:   character.Name,
		CorporationID:   character.CorporationID,
		CorporationName: character.CorporationName,
		AllianceID:      nullableID(character.AllianceID),
		AllianceName:    nullableString(character.AllianceName),
		Username:        username,
		DisplayName:     nickname.Render(&character, groupNameList(groups), rules),
		Groups:          models.GroupNames(groups),
		Active:          hasAnyRequiredGroup(rules.RequiredGroups, models.GroupIDs(groups)),
	}

	if rules.ShowAvatar {
		image, err := s.avatars.Fetch(ctx, character.CharacterID)
		if err != nil {
			// Keep the stored image when the HTTP request fails.
			s.logger.Warn(ctx, "fetching avatar", "character_id", character.CharacterID, "error", err.Error())
		} else {
			params.Avatar = image
			params.SetAvatar = true
		}
	}

	if err := repo.Update(ctx, params); err != nil {
		s.logger.Error(ctx, "updating account", "character_id", character.CharacterID, "error", err.Error())
		return common.ErrInternal
	}
	return nil
}

// upsertTickers records the corporation and alliance ticker strings. The
// ticker table is display metadata: failures are logged and the surrounding
// operation continues.
func (s *AccountService) upsertTickers(ctx context.Context, db dbx.DBTX, character models.Character) {
	repo := s.repos.Tickers(db)

	subjects := []struct {
		subjectType string
		id          int64
		text        string
	}{
		{models.SubjectCorporation, character.CorporationID, character.CorporationTicker},
		{models.SubjectAlliance, character.AllianceID, character.AllianceTicker},
	}

	for _, sub := range subjects {
		if sub.id == 0 || sub.text == "" {
			continue
		}
		filter := models.TickerFilter(sub.subjectType, sub.id)
		if err := repo.Upsert(ctx, filter, sub.text); err != nil {
			s.logger.Error(ctx, "upserting ticker", "filter", filter, "error", err.Error())
		}
	}
}

// reconcileBan derives the ban row from current group membership. Unlike
// tickers this is a security property: failures abort the update.
func (s *AccountService) reconcileBan(ctx context.Context, db dbx.DBTX, rules *plugincfg.Config, characterID int64, groupIDs []int64) error {
	if rules.BannedGroup == nil {
		return nil
	}
	repo := s.repos.Bans(db)
	filter := models.BanFilter(characterID)

	banned := false
	for _, id := range groupIDs {
		if id == *rules.BannedGroup {
			banned = true
			break
		}
	}

	var err error
	if banned {
		err = repo.Insert(ctx, filter, models.BanReason)
	} else {
		err = repo.Delete(ctx, filter)
	}
	if err != nil {
		s.logger.Error(ctx, "reconciling ban", "filter", filter, "error", err.Error())
		return common.ErrInternal
	}
	return nil
}

// ResetPassword stores and returns a fresh random password for the account.
func (s *AccountService) ResetPassword(ctx context.Context, characterID int64) (string, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return "", err
	}

	password, err := common.GeneratePassword()
	if err != nil {
		s.logger.Error(ctx, "generating password", "error", err.Error())
		return "", common.ErrInternal
	}

	if err := s.repos.Accounts(db).UpdatePassword(ctx, characterID, password); err != nil {
		s.logger.Error(ctx, "resetting password", "character_id", characterID, "error", err.Error())
		return "", common.ErrInternal
	}

	return password, nil
}

// GetAllAccounts lists every stored character id, least recently updated
// first, so the host can walk accounts in sync order.
func (s *AccountService) GetAllAccounts(ctx context.Context) ([]int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := s.repos.Accounts(db).AllCharacterIDs(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing accounts", "error", err.Error())
		return nil, common.ErrInternal
	}
	return ids, nil
}

// UpdatePlayerAccount is not supported: accounts are keyed by character,
// never by player.
func (s *AccountService) UpdatePlayerAccount(ctx context.Context, mainCharacter models.Character, groups []models.Group) error {
	return common.ErrUnsupported
}

// MoveServiceAccount reports success without touching anything: there is no
// per-player state to move.
func (s *AccountService) MoveServiceAccount(ctx context.Context, toPlayerID, fromPlayerID int64) bool {
	return true
}

// GetAllPlayerAccounts always returns an empty result; accounts are not
// grouped by player.
func (s *AccountService) GetAllPlayerAccounts(ctx context.Context) []int64 {
	return []int64{}
}

// Search always returns an empty result; free-text search is not offered.
func (s *AccountService) Search(ctx context.Context, query string) []models.AccountRecord {
	return []models.AccountRecord{}
}

func hasAnyRequiredGroup(required, groupIDs []int64) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range groupIDs {
			if want == have {
				return true
			}
		}
	}
	return false
}

func groupNameList(groups []models.Group) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}

func nullableID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
