package configs

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/foliva/docengine/pkg/rule"
)

// DeletionRule enables the two-stage deletion state machine for one
// collection and fixes its stage windows.
type DeletionRule struct {
	Collection string `mapstructure:"collection"   rule:"required"`
	Stage1Days int    `mapstructure:"stage1_days"  rule:"min=0"`
	Stage2Days int    `mapstructure:"stage2_days"  rule:"min=0"`
}

// DeletionConfig is parsed from FOLIVAFY_ENABLE_DELETION, a comma-separated
// list of "name:stage1_days:stage2_days" triples.
type DeletionConfig struct {
	Rules []DeletionRule `mapstructure:"rules"`
}

// Enabled reports whether deletion is configured for the named collection
// and, if so, returns its rule.
func (c *DeletionConfig) Enabled(collection string) (DeletionRule, bool) {
	for _, r := range c.Rules {
		if r.Collection == collection {
			return r, true
		}
	}

	return DeletionRule{}, false
}

func (c *DeletionConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("deletion.rules", []DeletionRule{})
}

// ParseDeletionRules parses the FOLIVAFY_ENABLE_DELETION environment value.
// Malformed triples are skipped rather than failing boot, since this value
// is operator-supplied and additive.
func ParseDeletionRules(raw string) []DeletionRule {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var rules []DeletionRule

	for _, triple := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(triple), ":")
		if len(parts) != 3 {
			continue
		}

		s1, err1 := strconv.Atoi(strings.TrimSpace(parts[1]))
		s2, err2 := strconv.Atoi(strings.TrimSpace(parts[2]))

		if err1 != nil || err2 != nil {
			continue
		}

		r := DeletionRule{
			Collection: strings.TrimSpace(parts[0]),
			Stage1Days: s1,
			Stage2Days: s2,
		}

		if err := rule.ValidateStruct(r); err != nil {
			continue
		}

		rules = append(rules, r)
	}

	return rules
}
