package nickname

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evetools/mumble-sync/internal/server/models"
	"github.com/evetools/mumble-sync/internal/server/plugincfg"
)

func testCharacter() *models.Character {
	return &models.Character{
		CharacterID:       1001,
		Name:              "Jane Doe",
		CorporationTicker: "FOO",
		AllianceTicker:    "BAR",
	}
}

func TestFindEnclosure(t *testing.T) {
	tests := []struct {
		name     string
		template string
		prefix   string
		suffix   string
	}{
		{name: "brackets", template: "[{tags}] {characterName}", prefix: "[", suffix: "]"},
		{name: "angle brackets", template: "x <{tags}>", prefix: "<", suffix: ">"},
		{name: "bare", template: "{tags} {characterName}", prefix: "", suffix: ""},
		{name: "at start", template: "{tags}] x", prefix: "", suffix: "]"},
		{name: "at end", template: "x [{tags}", prefix: "[", suffix: ""},
		{name: "whitespace is no enclosure", template: "a {tags} b", prefix: "", suffix: ""},
		{name: "absent", template: "{characterName}", prefix: "", suffix: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, s := findEnclosure(tt.template, "{tags}")
			assert.Equal(t, tt.prefix, p)
			assert.Equal(t, tt.suffix, s)
		})
	}
}

func TestRender_NoMatchedGroups(t *testing.T) {
	cfg := &plugincfg.Config{
		NicknameTemplate: "[{tags}] {characterName} <{corporationTicker}>",
		GroupsToTags:     plugincfg.TagMappings{{Group: "leadership", Tag: "CEO"}},
	}

	got := Render(testCharacter(), nil, cfg)

	// The tags span and its brackets collapse; no stray whitespace remains.
	assert.Equal(t, "Jane Doe <FOO>", got)
}

func TestRender_MainTag(t *testing.T) {
	cfg := &plugincfg.Config{
		NicknameTemplate: "[{tags}] {characterName} <{corporationTicker}>",
		GroupsToTags:     plugincfg.TagMappings{{Group: "leadership", Tag: "CEO"}},
	}

	got := Render(testCharacter(), []string{"leadership"}, cfg)
	assert.Equal(t, "[CEO] Jane Doe <FOO>", got)
}

func TestRender_MainTagReplacesCorporationTicker(t *testing.T) {
	cfg := &plugincfg.Config{
		NicknameTemplate:                 "[{tags}] {characterName} <{corporationTicker}>",
		GroupsToTags:                     plugincfg.TagMappings{{Group: "leadership", Tag: "CEO"}},
		MainTagReplacesCorporationTicker: true,
	}

	got := Render(testCharacter(), []string{"leadership"}, cfg)

	// The main tag moves into the corporation-ticker position, keeping the
	// tag enclosure, and is omitted from the tags span.
	assert.Equal(t, "Jane Doe [CEO]", got)
}

func TestRender_FirstMainTagWins(t *testing.T) {
	cfg := &plugincfg.Config{
		NicknameTemplate: "[{tags}] {characterName}",
		GroupsToTags: plugincfg.TagMappings{
			{Group: "leadership", Tag: "CEO"},
			{Group: "directors", Tag: "DIR"},
		},
	}

	got := Render(testCharacter(), []string{"directors", "leadership"}, cfg)

	// Mapping order decides, not the order of the character's groups.
	assert.Equal(t, "[CEO] Jane Doe", got)
}

func TestRender_AdditionalTagSlots(t *testing.T) {
	cfg := &plugincfg.Config{
		NicknameTemplate: "[{tags}] {characterName}",
		GroupsToTags: plugincfg.TagMappings{
			{Group: "fc", Tag: "FC"},
			{Group: "jfc", Tag: "JFC"},
			{Group: "leadership", Tag: "CEO"},
		},
		AdditionalTagGroups: [][]string{{"FC", "JFC"}},
	}

	// fc comes first in the mapping, so it fills the only slot; jfc is
	// ignored; leadership still becomes the main tag.
	got := Render(testCharacter(), []string{"jfc", "fc", "leadership"}, cfg)
	assert.Equal(t, "[FC] [CEO] Jane Doe", got)
}

func TestRender_SlotAlreadyFilledIgnoresLaterMappings(t *testing.T) {
	cfg := &plugincfg.Config{
		NicknameTemplate: "[{tags}] {characterName}",
		GroupsToTags: plugincfg.TagMappings{
			{Group: "jfc", Tag: "JFC"},
			{Group: "fc", Tag: "FC"},
		},
		AdditionalTagGroups: [][]string{{"FC", "JFC"}},
	}

	got := Render(testCharacter(), []string{"fc", "jfc"}, cfg)
	assert.Equal(t, "[JFC] Jane Doe", got)
}

func TestRender_EmptyAllianceTickerRemovesEnclosure(t *testing.T) {
	cfg := &plugincfg.Config{
		NicknameTemplate: "{characterName} <{allianceTicker}>",
	}

	c := testCharacter()
	c.AllianceTicker = ""
	assert.Equal(t, "Jane Doe", Render(c, nil, cfg))

	c.AllianceTicker = "BAR"
	assert.Equal(t, "Jane Doe <BAR>", Render(c, nil, cfg))
}

func TestRender_CollapsesWhitespace(t *testing.T) {
	cfg := &plugincfg.Config{
		NicknameTemplate: "  {characterName}   {tags}  ",
	}

	got := Render(testCharacter(), nil, cfg)
	assert.Equal(t, "Jane Doe", got)
}
