// Package plugincfg parses and validates the display-identity rules of the
// sync service: the nickname template, group-to-tag mappings, tag slots and
// the ban/required group settings.
//
// The document is YAML, parsed once and cached immutably for the process
// lifetime. A malformed or incomplete document is a fatal configuration
// error raised before any storage access.
package plugincfg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/evetools/mumble-sync/internal/common"
)

// Placeholders recognized in the nickname template. The character-name
// placeholder is mandatory; the others are optional and may carry a single
// enclosure character on each side (e.g. "[{tags}]").
const (
	PlaceholderCharacterName     = "{characterName}"
	PlaceholderTags              = "{tags}"
	PlaceholderCorporationTicker = "{corporationTicker}"
	PlaceholderAllianceTicker    = "{allianceTicker}"
)

// DefaultStorageLocator names the environment variable read for the
// PostgreSQL DSN when the document does not override it.
const DefaultStorageLocator = "MUMBLE_SYNC_DB_DSN"

// TagMapping assigns a display tag to members of one access group.
type TagMapping struct {
	Group string
	Tag   string
}

// TagMappings preserves the document order of the GroupsToTags mapping.
// Iteration order decides which candidate wins a slot or becomes the main
// tag, so a plain map is not usable here.
type TagMappings []TagMapping

func (m *TagMappings) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("GroupsToTags must be a mapping, got %s", value.Tag)
	}
	out := make(TagMappings, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var group, tag string
		if err := value.Content[i].Decode(&group); err != nil {
			return err
		}
		if err := value.Content[i+1].Decode(&tag); err != nil {
			return err
		}
		out = append(out, TagMapping{Group: group, Tag: tag})
	}
	*m = out
	return nil
}

// Config is the validated, immutable rule set.
type Config struct {
	NicknameTemplate                 string
	GroupsToTags                     TagMappings
	MainTagReplacesCorporationTicker bool
	ShowAvatar                       bool
	AdditionalTagGroups              [][]string
	BannedGroup                      *int64
	RequiredGroups                   []int64
	StorageLocator                   string
}

// document is the YAML-facing DTO. Pointer fields distinguish a missing
// mandatory key from a zero value.
type document struct {
	NicknameTemplate                 string       `yaml:"NicknameTemplate" validate:"required"`
	GroupsToTags                     *TagMappings `yaml:"GroupsToTags" validate:"required"`
	MainTagReplacesCorporationTicker *bool        `yaml:"MainTagReplacesCorporationTicker" validate:"required"`
	ShowAvatar                       bool         `yaml:"ShowAvatar"`
	AdditionalTagGroups              [][]string   `yaml:"AdditionalTagGroups"`
	BannedGroup                      *int64       `yaml:"BannedGroup"`
	RequiredGroups                   []int64      `yaml:"RequiredGroups"`
	StorageLocator                   string       `yaml:"StorageLocator"`
}

var validate = validator.New()

// Parse builds a Config from a YAML document. All errors wrap
// common.ErrConfiguration.
func Parse(data []byte) (*Config, error) {
	doc := &document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: incomplete document: %v", common.ErrConfiguration, err)
	}

	if !strings.Contains(doc.NicknameTemplate, PlaceholderCharacterName) {
		return nil, fmt.Errorf("%w: NicknameTemplate must contain %s",
			common.ErrConfiguration, PlaceholderCharacterName)
	}

	cfg := &Config{
		NicknameTemplate:                 doc.NicknameTemplate,
		GroupsToTags:                     *doc.GroupsToTags,
		MainTagReplacesCorporationTicker: *doc.MainTagReplacesCorporationTicker,
		ShowAvatar:                       doc.ShowAvatar,
		AdditionalTagGroups:              doc.AdditionalTagGroups,
		BannedGroup:                      doc.BannedGroup,
		RequiredGroups:                   doc.RequiredGroups,
		StorageLocator:                   doc.StorageLocator,
	}
	if cfg.StorageLocator == "" {
		cfg.StorageLocator = DefaultStorageLocator
	}
	return cfg, nil
}

// Loader reads and caches the rule document. The first Get parses and
// validates; every later Get returns the same result, success or failure.
type Loader struct {
	path string

	once sync.Once
	cfg  *Config
	err  error
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// NewStaticLoader returns a Loader that always yields cfg, for embedders and
// tests that resolve the document themselves.
func NewStaticLoader(cfg *Config) *Loader {
	l := &Loader{}
	l.once.Do(func() { l.cfg = cfg })
	return l
}

// Get returns the cached Config, loading it on first use.
func (l *Loader) Get() (*Config, error) {
	l.once.Do(func() {
		data, err := os.ReadFile(l.path)
		if err != nil {
			l.err = fmt.Errorf("%w: %v", common.ErrConfiguration, err)
			return
		}
		l.cfg, l.err = Parse(data)
	})
	return l.cfg, l.err
}

// IsConfigurationError reports whether err originates from document
// parsing or validation.
func IsConfigurationError(err error) bool {
	return errors.Is(err, common.ErrConfiguration)
}
