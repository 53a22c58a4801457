package config

import (
	"fmt"

	"github.com/nconklindev/sway/internal/types"
)

var knownFields = map[types.Field]bool{
	types.FieldIdentifier:  true,
	types.FieldStakeholder: true,
	types.FieldImpact:      true,
	types.FieldPerception:  true,
	types.FieldInfluence:   true,
	types.FieldSentiment:   true,
	types.FieldGroup:       true,
}

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg.Impact.SkipRows < 0 {
		return fmt.Errorf("impact.skip_rows must be >= 0, got %d", cfg.Impact.SkipRows)
	}
	for i, group := range cfg.Impact.SheetRequires {
		if len(group) == 0 {
			return fmt.Errorf("impact.sheet_requires[%d]: empty keyword group", i)
		}
	}
	if cfg.Impact.Extreme == "" {
		return fmt.Errorf("impact.extreme must be set")
	}
	if err := validateRules("impact", cfg.Impact.Rules, cfg.Impact.Required); err != nil {
		return err
	}

	if cfg.Stakeholder.Marker == "" {
		return fmt.Errorf("stakeholder.marker must be set")
	}
	if cfg.Stakeholder.Extreme == "" {
		return fmt.Errorf("stakeholder.extreme must be set")
	}
	if cfg.Stakeholder.MarkerColumn < 0 {
		return fmt.Errorf("stakeholder.marker_column must be >= 0, got %d", cfg.Stakeholder.MarkerColumn)
	}
	if err := validateRules("stakeholder", cfg.Stakeholder.Rules, cfg.Stakeholder.Required); err != nil {
		return err
	}

	v := cfg.Vocabulary
	for name, s := range map[string]Scale{
		"level":       v.Level,
		"sentiment":   v.Sentiment,
		"impact_size": v.ImpactSize,
	} {
		if len(s.Values) == 0 {
			return fmt.Errorf("vocabulary.%s: no values", name)
		}
		if len(s.Values) != len(s.Positions) {
			return fmt.Errorf(
				"vocabulary.%s: %d values but %d positions",
				name, len(s.Values), len(s.Positions),
			)
		}
	}

	if cfg.Jitter.Spread < 0 || cfg.Jitter.Spread >= 0.5 {
		return fmt.Errorf("jitter.spread must be in [0, 0.5), got %g", cfg.Jitter.Spread)
	}

	return nil
}

func validateRules(section string, rules []Rule, required []types.Field) error {
	covered := make(map[types.Field]bool)
	for i, r := range rules {
		if !knownFields[r.Field] {
			return fmt.Errorf("%s.rules[%d]: unknown field %q", section, i, r.Field)
		}
		if r.Exact == "" && len(r.Contains) == 0 && r.Column == nil {
			return fmt.Errorf("%s.rules[%d]: %s needs exact, contains or column", section, i, r.Field)
		}
		if r.Column != nil && *r.Column < 0 {
			return fmt.Errorf("%s.rules[%d]: column must be >= 0", section, i)
		}
		covered[r.Field] = true
	}
	for _, f := range required {
		if !covered[f] {
			return fmt.Errorf("%s: required field %s has no rule", section, f)
		}
	}
	return nil
}
