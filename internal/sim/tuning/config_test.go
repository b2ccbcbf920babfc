package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("", zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesValidFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
coin:
  display_name: "Taler"
  item_material: gold_nugget
  smelt_time: 100
storage_chest:
  prefix: "[shop]"
command_message:
  coins: "Balance: %d"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Coin.DisplayName != "Taler" || cfg.Coin.Material != "gold_nugget" || cfg.Coin.SmeltTime != 100 {
		t.Fatalf("coin section not applied: %+v", cfg.Coin)
	}
	if cfg.StorageChest.Prefix != "[shop]" || cfg.CommandMessage.Coins != "Balance: %d" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.CoinSign.Prefix != Defaults().CoinSign.Prefix {
		t.Fatalf("missing field must keep default")
	}
}

func TestParseFallsBackAndWarnsOnInvalidValues(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	body := `
coin:
  item_material: NOT_A_BLOCK
  smelt_exp: -3
  smelt_time: "slow"
  head_player_uuid: nope
  resource_pack_url: "ftp://pack"
coin_sign:
  prefix: "this prefix is far too long"
command_message:
  coins: "no placeholder"
runtime:
  tick_rate_hz: 0
  snapshot_keep: -1
`
	cfg, err := Parse([]byte(body), zap.New(core))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("every invalid value must fall back to its default, got %+v", cfg)
	}
	if got := logs.FilterMessage("invalid configuration, using default").Len(); got != 9 {
		t.Fatalf("warnings=%d, want 9", got)
	}
}

func TestParseRejectsBrokenYAML(t *testing.T) {
	if _, err := Parse([]byte("coin: [unterminated"), zap.NewNop()); err == nil {
		t.Fatalf("expected yaml error")
	}
}
