package models

import "strings"

// Character is the host-supplied identity record driving a sync operation.
// A PlayerID of zero means the character is no longer claimed by any player
// on the identity platform.
type Character struct {
	CharacterID       int64
	PlayerID          int64
	Name              string
	OwnerHash         string
	CorporationID     int64
	CorporationName   string
	CorporationTicker string
	AllianceID        int64
	AllianceName      string
	AllianceTicker    string
}

// Group is an access group the character belongs to on the identity platform.
type Group struct {
	ID   int64
	Name string
}

// GroupNames serializes group names in their given order.
func GroupNames(groups []Group) string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return strings.Join(names, ",")
}

// GroupIDs extracts the numeric identifiers in their given order.
func GroupIDs(groups []Group) []int64 {
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}
