package config

import (
	"os"
	"path/filepath"
	"testing"

	"bidpilot/internal/bidding"
)

func writeStrategy(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STRATEGY_FILE", path)
}

func TestLoadStrategyDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("STRATEGY_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := LoadStrategy()
	if err != nil {
		t.Fatalf("LoadStrategy() error = %v", err)
	}
	if cfg.Policy != bidding.DefaultPolicy() {
		t.Errorf("policy = %+v, want defaults", cfg.Policy)
	}
	if !cfg.Expansion.CloneAssets {
		t.Error("clone_assets should default to true")
	}
}

func TestLoadStrategyParsesOverrides(t *testing.T) {
	writeStrategy(t, `
policy:
  target_rank: 2
  bid_step: 100
overrides:
  - target: grp-special
    policy:
      target_rank: 1
      max_bid: 20000
expansion:
  clone_assets: false
`)

	cfg, err := LoadStrategy()
	if err != nil {
		t.Fatalf("LoadStrategy() error = %v", err)
	}

	base := cfg.PolicyFor("grp-other")
	if base.TargetRank != 2 || base.BidStep != 100 {
		t.Errorf("base policy = %+v", base)
	}
	// Unset fields are filled from defaults.
	if base.MaxBid != bidding.DefaultPolicy().MaxBid {
		t.Errorf("base MaxBid = %d, want default", base.MaxBid)
	}

	over := cfg.PolicyFor("grp-special")
	if over.TargetRank != 1 || over.MaxBid != 20000 {
		t.Errorf("override policy = %+v", over)
	}

	if cfg.Expansion.CloneAssets {
		t.Error("clone_assets override not applied")
	}
}

func TestLoadStrategyRejectsMalformedYAML(t *testing.T) {
	writeStrategy(t, "policy: [not a map")

	if _, err := LoadStrategy(); err == nil {
		t.Fatal("LoadStrategy() = nil error for malformed file")
	}
}

func TestPolicyForNilConfig(t *testing.T) {
	var cfg *StrategyConfig
	if got := cfg.PolicyFor("anything"); got != bidding.DefaultPolicy() {
		t.Errorf("nil config policy = %+v", got)
	}
}
