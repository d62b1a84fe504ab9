// Package models contains the entity objects shared by repositories and
// services.
package models

import (
	"database/sql"
	"time"
)

// Account is one row of the account table: the voice-server identity kept
// for an external character.
type Account struct {
	CharacterID     int64
	CharacterName   string
	CorporationID   int64
	CorporationName string
	AllianceID      sql.NullInt64
	AllianceName    sql.NullString
	Username        string
	Password        string
	Groups          string // comma-separated group names, document order kept for display
	OwnerHash       string
	DisplayName     string
	Avatar          []byte
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Status of an account as reported to the host.
type Status string

const (
	StatusActive      Status = "Active"
	StatusDeactivated Status = "Deactivated"
)

// AccountRecord is the host-facing view of an account. Password stays a
// pointer so callers that never look up a secret can leave it unset.
type AccountRecord struct {
	CharacterID int64
	Username    string
	Password    *string
	Status      Status
	FullName    string
}
