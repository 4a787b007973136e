package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"bidpilot/internal/bidding"
)

// StrategyConfig represents the structure of the strategy.yaml file.
// Bid tuning is hierarchical (account defaults plus per-target overrides),
// which is easier to manage in YAML than env vars.
type StrategyConfig struct {
	Policy    bidding.Policy   `yaml:"policy"`
	Overrides []TargetOverride `yaml:"overrides"`
	Expansion ExpansionConfig  `yaml:"expansion"`
}

// TargetOverride tunes the policy for one campaign or ad group.
type TargetOverride struct {
	Target string         `yaml:"target"` // campaign or ad group id
	Policy bidding.Policy `yaml:"policy"`
}

// ExpansionConfig defines defaults for keyword group expansion.
type ExpansionConfig struct {
	CloneAssets bool `yaml:"clone_assets"` // Copy ads/extensions into new sibling groups
}

// LoadStrategy loads the YAML strategy file. Path is determined by the
// STRATEGY_FILE env var, defaulting to "strategy.yaml". Returns built-in
// defaults without error if the file doesn't exist.
func LoadStrategy() (*StrategyConfig, error) {
	path := getEnv("STRATEGY_FILE", "strategy.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Strategy file is optional
			return defaultStrategy(), nil
		}
		return nil, err
	}

	cfg := defaultStrategy()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Policy = cfg.Policy.Normalize()
	return cfg, nil
}

func defaultStrategy() *StrategyConfig {
	return &StrategyConfig{
		Policy:    bidding.DefaultPolicy(),
		Expansion: ExpansionConfig{CloneAssets: true},
	}
}

// PolicyFor returns the policy for a target, falling back to the account
// default when no override matches.
func (c *StrategyConfig) PolicyFor(target string) bidding.Policy {
	if c == nil {
		return bidding.DefaultPolicy()
	}
	for _, o := range c.Overrides {
		if o.Target == target {
			return o.Policy.Normalize()
		}
	}
	return c.Policy.Normalize()
}
