package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nconklindev/sway/internal/types"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Impact      ImpactConfig      `yaml:"impact"`
	Stakeholder StakeholderConfig `yaml:"stakeholder"`
	Vocabulary  VocabularyConfig  `yaml:"vocabulary"`
	Jitter      JitterConfig      `yaml:"jitter"`
}

// ---- CHANGE IMPACT ----

type ImpactConfig struct {
	// SkipRows is the fixed offset of the header row in every candidate sheet.
	SkipRows int `yaml:"skip_rows"`
	// SheetRequires lists keyword groups; a sheet qualifies when every group
	// has at least one keyword contained in some column name.
	SheetRequires [][]string    `yaml:"sheet_requires"`
	Rules         []Rule        `yaml:"rules"`
	Required      []types.Field `yaml:"required"`
	// DropMissing lists the fields a row must have to be kept.
	DropMissing []types.Field `yaml:"drop_missing"`
	Explode     bool          `yaml:"explode"`
	// Extreme is the impact value the top-offender insight counts.
	Extreme string `yaml:"extreme"`
}

// ---- STAKEHOLDER ANALYSIS ----

type StakeholderConfig struct {
	SheetName    string        `yaml:"sheet_name"`
	Marker       string        `yaml:"marker"`
	MarkerColumn int           `yaml:"marker_column"`
	Rules        []Rule        `yaml:"rules"`
	Required     []types.Field `yaml:"required"`
	DropMissing  []types.Field `yaml:"drop_missing"`
	Explode      bool          `yaml:"explode"`
	// Extreme is the sentiment value the top-offender insight counts per group.
	Extreme string `yaml:"extreme"`
}

// Rule resolves one canonical field. Exactly one of Exact, Contains or Column is used,
// in that order of precedence. Rules are evaluated in list order; the first rule
// that resolves a field wins and later rules for the same field are skipped.
type Rule struct {
	Field types.Field `yaml:"field"`
	// Exact matches a header equal to this label after trimming.
	Exact string `yaml:"exact,omitempty"`
	// Contains matches the first column whose normalized name contains every keyword.
	Contains []string `yaml:"contains,omitempty"`
	// Column takes the column at this 0-based index regardless of its name.
	Column *int `yaml:"column,omitempty"`
}

func (r Rule) String() string {
	switch {
	case r.Exact != "":
		return fmt.Sprintf("%s = %q", r.Field, r.Exact)
	case len(r.Contains) > 0:
		return fmt.Sprintf("%s contains %s", r.Field, strings.Join(r.Contains, "+"))
	case r.Column != nil:
		return fmt.Sprintf("%s at column %d", r.Field, *r.Column)
	}
	return string(r.Field)
}

// ---- VOCABULARY ----

type VocabularyConfig struct {
	Level     Scale `yaml:"level"`
	Sentiment Scale `yaml:"sentiment"`
	// ImpactSize is the scatter glyph size per impact level.
	ImpactSize        Scale      `yaml:"impact_size"`
	DefaultImpactSize float64    `yaml:"default_impact_size"`
	Strategies        []Quadrant `yaml:"strategies"`
	UndefinedStrategy string     `yaml:"undefined_strategy"`
}

// Scale is a closed, ordered vocabulary with a numeric position per value.
type Scale struct {
	Values    []string  `yaml:"values"`
	Positions []float64 `yaml:"positions"`
}

// Position returns the numeric position of an already normalized value.
func (s Scale) Position(v string) (float64, bool) {
	for i, val := range s.Values {
		if val == v && i < len(s.Positions) {
			return s.Positions[i], true
		}
	}
	return 0, false
}

// Contains reports whether v is in the vocabulary.
func (s Scale) Contains(v string) bool {
	for _, val := range s.Values {
		if val == v {
			return true
		}
	}
	return false
}

// Quadrant labels one (influence, sentiment) cell of the engagement grid.
type Quadrant struct {
	Influence float64 `yaml:"influence"`
	Sentiment float64 `yaml:"sentiment"`
	Strategy  string  `yaml:"strategy"`
}

// ---- JITTER ----

type JitterConfig struct {
	Spread float64 `yaml:"spread"`
	Seed   uint64  `yaml:"seed"`
}

// Default returns the built-in configuration. Each call returns a fresh copy.
func Default() *Config {
	impactColumn := 3 // Level of Impact is always the 4th column of the template

	return &Config{
		Impact: ImpactConfig{
			SkipRows: 1,
			SheetRequires: [][]string{
				{"workstream", "process"},
				{"stakeholder"},
				{"impact"},
				{"perception"},
			},
			Rules: []Rule{
				{Field: types.FieldIdentifier, Contains: []string{"workstream"}},
				{Field: types.FieldIdentifier, Contains: []string{"process"}},
				{Field: types.FieldStakeholder, Contains: []string{"stakeholder"}},
				{Field: types.FieldPerception, Contains: []string{"perception"}},
				{Field: types.FieldImpact, Column: &impactColumn},
			},
			Required: []types.Field{
				types.FieldIdentifier,
				types.FieldStakeholder,
				types.FieldImpact,
				types.FieldPerception,
			},
			DropMissing: []types.Field{
				types.FieldStakeholder,
				types.FieldImpact,
				types.FieldPerception,
			},
			Explode: true,
			Extreme: "High",
		},
		Stakeholder: StakeholderConfig{
			SheetName:    "Stakeholder Analysis",
			Marker:       "Stakeholder Name",
			MarkerColumn: 0,
			Rules: []Rule{
				{Field: types.FieldStakeholder, Exact: "Stakeholder Name"},
				{Field: types.FieldGroup, Exact: "Stakeholder Group"},
				{Field: types.FieldSentiment, Exact: "Sentiment"},
				{Field: types.FieldInfluence, Exact: "Influence"},
				{Field: types.FieldImpact, Exact: "Impact"},
			},
			Required: []types.Field{
				types.FieldStakeholder,
				types.FieldGroup,
				types.FieldSentiment,
				types.FieldInfluence,
			},
			DropMissing: []types.Field{
				types.FieldStakeholder,
				types.FieldSentiment,
				types.FieldInfluence,
				types.FieldGroup,
			},
			Explode: false,
			Extreme: "Negative",
		},
		Vocabulary: VocabularyConfig{
			Level: Scale{
				Values:    []string{"Low", "Medium", "High"},
				Positions: []float64{0, 1, 2},
			},
			Sentiment: Scale{
				Values:    []string{"Negative", "Neutral", "Positive"},
				Positions: []float64{-1, 0, 1},
			},
			ImpactSize: Scale{
				Values:    []string{"Low", "Medium", "High"},
				Positions: []float64{200, 400, 600},
			},
			DefaultImpactSize: 300,
			Strategies: []Quadrant{
				{Influence: 2, Sentiment: -1, Strategy: "Engage Immediately"},
				{Influence: 2, Sentiment: 0, Strategy: "Leverage as Advocate"},
				{Influence: 2, Sentiment: 1, Strategy: "Leverage as Advocate"},
				{Influence: 1, Sentiment: -1, Strategy: "Monitor Closely"},
				{Influence: 1, Sentiment: 0, Strategy: "Monitor Neutral Parties"},
				{Influence: 1, Sentiment: 1, Strategy: "Inform Regularly"},
				{Influence: 0, Sentiment: -1, Strategy: "Observe Occasionally"},
				{Influence: 0, Sentiment: 0, Strategy: "Monitor Neutral Parties"},
				{Influence: 0, Sentiment: 1, Strategy: "Inform as Needed"},
			},
			UndefinedStrategy: "Undefined",
		},
		Jitter: JitterConfig{
			Spread: 0.35,
			Seed:   42,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Lists in the file replace the default lists rather than merging with them.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
