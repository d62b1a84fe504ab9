package models

import "fmt"

// BanReason is the fixed public reason written for ban entries.
const BanReason = "banned"

// BanFilter builds the primary key for a banned character.
func BanFilter(characterID int64) string {
	return fmt.Sprintf("character-%d", characterID)
}
