// Package nickname renders the templated display name for an account from
// the character's organizational data and its current access groups.
//
// Rendering is a pure function of its inputs; malformed templates are
// rejected earlier, at configuration load time.
package nickname

import (
	"regexp"
	"strings"

	"github.com/evetools/mumble-sync/internal/server/models"
	"github.com/evetools/mumble-sync/internal/server/plugincfg"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// findEnclosure returns the single enclosure character on each side of the
// placeholder, trimmed of whitespace. A placeholder at the template edge or
// with whitespace next to it has an empty enclosure on that side. Exactly
// one character per side is supported; multi-character brackets are not.
func findEnclosure(template, placeholder string) (prefix, suffix string) {
	position := strings.Index(template, placeholder)
	if position < 0 {
		return "", ""
	}
	if position > 0 {
		prefix = strings.TrimSpace(template[position-1 : position])
	}
	end := position + len(placeholder)
	if end < len(template) {
		suffix = strings.TrimSpace(template[end : end+1])
	}
	return prefix, suffix
}

// Render produces the display name for the character given its active group
// names and the configured template rules.
func Render(character *models.Character, activeGroups []string, cfg *plugincfg.Config) string {
	template := cfg.NicknameTemplate

	tagPrefix, tagSuffix := findEnclosure(template, plugincfg.PlaceholderTags)
	corpPrefix, corpSuffix := findEnclosure(template, plugincfg.PlaceholderCorporationTicker)
	alliPrefix, alliSuffix := findEnclosure(template, plugincfg.PlaceholderAllianceTicker)

	active := make(map[string]struct{}, len(activeGroups))
	for _, g := range activeGroups {
		active[g] = struct{}{}
	}

	slotTags := make(map[string]struct{})
	for _, slot := range cfg.AdditionalTagGroups {
		for _, tag := range slot {
			slotTags[tag] = struct{}{}
		}
	}

	// Ordered scan over the group-to-tag mapping: the first candidate wins a
	// slot position, and the first non-slot candidate becomes the main tag.
	assigned := make([]string, len(cfg.AdditionalTagGroups))
	filled := make([]bool, len(cfg.AdditionalTagGroups))
	mainTag := ""
	haveMainTag := false
	for _, mapping := range cfg.GroupsToTags {
		if _, ok := active[mapping.Group]; !ok {
			continue
		}
		if _, ok := slotTags[mapping.Tag]; ok {
			for position, slot := range cfg.AdditionalTagGroups {
				if filled[position] || !slotContains(slot, mapping.Tag) {
					continue
				}
				assigned[position] = tagPrefix + mapping.Tag + tagSuffix
				filled[position] = true
				break
			}
		} else if !haveMainTag {
			mainTag = mapping.Tag
			haveMainTag = true
		}
	}

	var finalTags []string
	for position, ok := range filled {
		if ok {
			finalTags = append(finalTags, assigned[position])
		}
	}

	tagsValue := strings.Join(finalTags, " ")
	if haveMainTag && !cfg.MainTagReplacesCorporationTicker {
		tagsValue += " " + tagPrefix + mainTag + tagSuffix
	}

	corpValue := corpPrefix + character.CorporationTicker + corpSuffix
	if cfg.MainTagReplacesCorporationTicker && haveMainTag {
		corpValue = tagPrefix + mainTag + tagSuffix
	}

	alliValue := ""
	if character.AllianceTicker != "" {
		alliValue = alliPrefix + character.AllianceTicker + alliSuffix
	}

	// Each placeholder and its enclosure characters form one substitution
	// unit, so an empty value removes the enclosure too.
	name := template
	name = strings.ReplaceAll(name, plugincfg.PlaceholderCharacterName, character.Name)
	name = strings.ReplaceAll(name, tagPrefix+plugincfg.PlaceholderTags+tagSuffix, tagsValue)
	name = strings.ReplaceAll(name, corpPrefix+plugincfg.PlaceholderCorporationTicker+corpSuffix, corpValue)
	name = strings.ReplaceAll(name, alliPrefix+plugincfg.PlaceholderAllianceTicker+alliSuffix, alliValue)

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))
}

func slotContains(slot []string, tag string) bool {
	for _, t := range slot {
		if t == tag {
			return true
		}
	}
	return false
}
