package httpapi

import "github.com/evetools/mumble-sync/internal/server/models"

type characterPayload struct {
	CharacterID       int64  `json:"characterId"`
	PlayerID          int64  `json:"playerId"`
	Name              string `json:"name"`
	OwnerHash         string `json:"ownerHash"`
	CorporationID     int64  `json:"corporationId"`
	CorporationName   string `json:"corporationName"`
	CorporationTicker string `json:"corporationTicker"`
	AllianceID        int64  `json:"allianceId"`
	AllianceName      string `json:"allianceName"`
	AllianceTicker    string `json:"allianceTicker"`
}

func (p characterPayload) toModel() models.Character {
	return models.Character{
		CharacterID:       p.CharacterID,
		PlayerID:          p.PlayerID,
		Name:              p.Name,
		OwnerHash:         p.OwnerHash,
		CorporationID:     p.CorporationID,
		CorporationName:   p.CorporationName,
		CorporationTicker: p.CorporationTicker,
		AllianceID:        p.AllianceID,
		AllianceName:      p.AllianceName,
		AllianceTicker:    p.AllianceTicker,
	}
}

type groupPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toGroups(payload []groupPayload) []models.Group {
	groups := make([]models.Group, len(payload))
	for i, g := range payload {
		groups[i] = models.Group{ID: g.ID, Name: g.Name}
	}
	return groups
}

type accountPayload struct {
	CharacterID int64   `json:"characterId"`
	Username    string  `json:"username"`
	Password    *string `json:"password"`
	Status      string  `json:"status"`
	FullName    string  `json:"fullName"`
}

func toAccountPayload(r models.AccountRecord) accountPayload {
	return accountPayload{
		CharacterID: r.CharacterID,
		Username:    r.Username,
		Password:    r.Password,
		Status:      string(r.Status),
		FullName:    r.FullName,
	}
}

type queryAccountsRequest struct {
	Characters []characterPayload `json:"characters"`
}

type accountListResponse struct {
	Accounts []accountPayload `json:"accounts"`
}

type registerRequest struct {
	Character       characterPayload `json:"character"`
	Groups          []groupPayload   `json:"groups"`
	EmailAddress    string           `json:"emailAddress"`
	AllCharacterIDs []int64          `json:"allCharacterIds"`
}

type updateAccountRequest struct {
	Character     characterPayload  `json:"character"`
	Groups        []groupPayload    `json:"groups"`
	MainCharacter *characterPayload `json:"mainCharacter"`
}

type passwordResponse struct {
	Password string `json:"password"`
}

type characterIDsResponse struct {
	CharacterIDs []int64 `json:"characterIds"`
}

type moveRequest struct {
	ToPlayerID   int64 `json:"toPlayerId"`
	FromPlayerID int64 `json:"fromPlayerId"`
}

type moveResponse struct {
	Moved bool `json:"moved"`
}

type errorResponse struct {
	Error string `json:"error"`
}
