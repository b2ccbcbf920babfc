// Package tuning loads the economy configuration file.
//
// Every field has a built-in default and a validator. A value that is missing
// keeps the default; a value that has the wrong type or fails its validator is
// logged and replaced by the default, so a bad entry never stops the server.
package tuning

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"realcoins/internal/sim/world/kernel/model"
)

type Config struct {
	Coin           Coin           `yaml:"coin"`
	CoinSign       SignPrefix     `yaml:"coin_sign"`
	StorageChest   SignPrefix     `yaml:"storage_chest"`
	ErrorMessages  ErrorMessages  `yaml:"error_messages"`
	InfoMessages   InfoMessages   `yaml:"info_messages"`
	CoinMessages   CoinMessages   `yaml:"coin_messages"`
	CommandMessage CommandMessage `yaml:"command_message"`
	Runtime        Runtime        `yaml:"runtime"`
}

type Coin struct {
	DisplayName     string `yaml:"display_name"`
	Material        string `yaml:"item_material"`
	UseHead         bool   `yaml:"use_head"`
	HeadPlayerUUID  string `yaml:"head_player_uuid"`
	HeadValue       string `yaml:"head_value"`
	SmeltExp        int    `yaml:"smelt_exp"`
	SmeltTime       int    `yaml:"smelt_time"`
	UseResourcePack bool   `yaml:"use_resource_pack"`
	ResourcePackURL string `yaml:"resource_pack_url"`
}

// SignPrefix is the marker text a player writes on a sign. coin_sign marks a
// vault, storage_chest marks a trading post.
type SignPrefix struct {
	Prefix string `yaml:"prefix"`
}

type ErrorMessages struct {
	CreateTradingSign string `yaml:"create_trading_sign"`
	CreateCoinChest   string `yaml:"create_coin_chest"`
	InvalidTradeChest string `yaml:"invalid_trade_chest"`
	NotCoinDuringPay  string `yaml:"not_coin_during_pay"`
	NotTradingBlock   string `yaml:"not_trading_block"`
	SignUnreadable    string `yaml:"sign_unreadable"`
}

type InfoMessages struct {
	TradeSuccess string `yaml:"trade_success"`
}

type CoinMessages struct {
	FakeCoin string `yaml:"fake_coin"`
	RealCoin string `yaml:"real_coin"`
}

type CommandMessage struct {
	Coins string `yaml:"coins"`
}

type Runtime struct {
	TickRateHz         int `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
	// SnapshotKeep is how many snapshots stay next to the live world; older
	// ones move to the archive. 0 keeps everything in place.
	SnapshotKeep int `yaml:"snapshot_keep"`
}

func Defaults() Config {
	return Config{
		Coin: Coin{
			DisplayName:    "Coin",
			Material:       model.PoisonousPotato,
			HeadPlayerUUID: "8667ba71-b85a-4004-af54-457a9734eed7",
			SmeltExp:       1,
			SmeltTime:      200,
		},
		CoinSign:     SignPrefix{Prefix: "[coins]"},
		StorageChest: SignPrefix{Prefix: "[trade]"},
		ErrorMessages: ErrorMessages{
			CreateTradingSign: "Could not create a trading sign here",
			CreateCoinChest:   "Could not create a coin chest here",
			InvalidTradeChest: "This container can not be used for trading",
			NotCoinDuringPay:  "Only coins are accepted as payment",
			NotTradingBlock:   "This is not a trading block",
			SignUnreadable:    "This trading sign is damaged",
		},
		InfoMessages: InfoMessages{TradeSuccess: "Trade complete"},
		CoinMessages: CoinMessages{
			FakeCoin: "This coin looks fake",
			RealCoin: "Coins are not edible",
		},
		CommandMessage: CommandMessage{Coins: "You have %d coins waiting for delivery"},
		Runtime:        Runtime{TickRateHz: 20, SnapshotEveryTicks: 6000, SnapshotKeep: 10},
	}
}

// Load reads path on top of Defaults. An empty path yields the defaults. Only
// an unreadable file or broken YAML is an error.
func Load(path string, log *zap.Logger) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(b, log)
}

func Parse(b []byte, log *zap.Logger) (Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := Defaults()
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return cfg, fmt.Errorf("config.yaml: %w", err)
	}
	for _, r := range rules {
		v, ok := lookup(raw, r.path)
		if !ok {
			continue
		}
		if err := r.apply(&cfg, v); err != nil {
			log.Warn("invalid configuration, using default",
				zap.String("path", r.path),
				zap.Any("value", v),
				zap.Error(err),
			)
		}
	}
	return cfg, nil
}

func lookup(raw map[string]any, path string) (any, bool) {
	var cur any = raw
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

type rule struct {
	path  string
	apply func(c *Config, v any) error
}

var errWrongType = errors.New("wrong type")

func stringField(path string, dst func(*Config) *string, checks ...func(string) error) rule {
	return rule{path: path, apply: func(c *Config, v any) error {
		s, ok := v.(string)
		if !ok {
			return errWrongType
		}
		for _, check := range checks {
			if err := check(s); err != nil {
				return err
			}
		}
		*dst(c) = s
		return nil
	}}
}

func intField(path string, dst func(*Config) *int, checks ...func(int) error) rule {
	return rule{path: path, apply: func(c *Config, v any) error {
		n, ok := v.(int)
		if !ok {
			return errWrongType
		}
		for _, check := range checks {
			if err := check(n); err != nil {
				return err
			}
		}
		*dst(c) = n
		return nil
	}}
}

func boolField(path string, dst func(*Config) *bool) rule {
	return rule{path: path, apply: func(c *Config, v any) error {
		b, ok := v.(bool)
		if !ok {
			return errWrongType
		}
		*dst(c) = b
		return nil
	}}
}

func maxChars(n int) func(string) error {
	return func(s string) error {
		if len([]rune(s)) > n {
			return fmt.Errorf("longer than %d chars", n)
		}
		return nil
	}
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("empty")
	}
	return nil
}

func itemMaterial(s string) error {
	m := model.NormalizeMaterial(s)
	if m == model.Air || !model.IsKnownMaterial(m) {
		return fmt.Errorf("unknown material %q", s)
	}
	return nil
}

func playerUUID(s string) error {
	_, err := uuid.Parse(s)
	return err
}

func packURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

func oneIntPlaceholder(s string) error {
	if strings.Count(s, "%") != 1 || strings.Count(s, "%d") != 1 {
		return errors.New("needs exactly one %d placeholder")
	}
	return nil
}

func nonNegative(n int) error {
	if n < 0 {
		return errors.New("negative")
	}
	return nil
}

func between(lo, hi int) func(int) error {
	return func(n int) error {
		if n < lo || n > hi {
			return fmt.Errorf("outside [%d, %d]", lo, hi)
		}
		return nil
	}
}

var rules = []rule{
	stringField("coin.display_name", func(c *Config) *string { return &c.Coin.DisplayName }, nonEmpty),
	stringField("coin.item_material", func(c *Config) *string { return &c.Coin.Material }, itemMaterial),
	boolField("coin.use_head", func(c *Config) *bool { return &c.Coin.UseHead }),
	stringField("coin.head_player_uuid", func(c *Config) *string { return &c.Coin.HeadPlayerUUID }, playerUUID),
	stringField("coin.head_value", func(c *Config) *string { return &c.Coin.HeadValue }),
	intField("coin.smelt_exp", func(c *Config) *int { return &c.Coin.SmeltExp }, nonNegative),
	intField("coin.smelt_time", func(c *Config) *int { return &c.Coin.SmeltTime }, nonNegative),
	boolField("coin.use_resource_pack", func(c *Config) *bool { return &c.Coin.UseResourcePack }),
	stringField("coin.resource_pack_url", func(c *Config) *string { return &c.Coin.ResourcePackURL }, packURL),

	stringField("coin_sign.prefix", func(c *Config) *string { return &c.CoinSign.Prefix }, nonEmpty, maxChars(model.SignLineLength)),
	stringField("storage_chest.prefix", func(c *Config) *string { return &c.StorageChest.Prefix }, nonEmpty, maxChars(model.SignLineLength)),

	stringField("error_messages.create_trading_sign", func(c *Config) *string { return &c.ErrorMessages.CreateTradingSign }),
	stringField("error_messages.create_coin_chest", func(c *Config) *string { return &c.ErrorMessages.CreateCoinChest }),
	stringField("error_messages.invalid_trade_chest", func(c *Config) *string { return &c.ErrorMessages.InvalidTradeChest }),
	stringField("error_messages.not_coin_during_pay", func(c *Config) *string { return &c.ErrorMessages.NotCoinDuringPay }),
	stringField("error_messages.not_trading_block", func(c *Config) *string { return &c.ErrorMessages.NotTradingBlock }),
	stringField("error_messages.sign_unreadable", func(c *Config) *string { return &c.ErrorMessages.SignUnreadable }),
	stringField("info_messages.trade_success", func(c *Config) *string { return &c.InfoMessages.TradeSuccess }),
	stringField("coin_messages.fake_coin", func(c *Config) *string { return &c.CoinMessages.FakeCoin }),
	stringField("coin_messages.real_coin", func(c *Config) *string { return &c.CoinMessages.RealCoin }),
	stringField("command_message.coins", func(c *Config) *string { return &c.CommandMessage.Coins }, oneIntPlaceholder),

	intField("runtime.tick_rate_hz", func(c *Config) *int { return &c.Runtime.TickRateHz }, between(1, 100)),
	intField("runtime.snapshot_every_ticks", func(c *Config) *int { return &c.Runtime.SnapshotEveryTicks }, nonNegative),
	intField("runtime.snapshot_keep", func(c *Config) *int { return &c.Runtime.SnapshotKeep }, nonNegative),
}
