// Package coin defines the currency item: how it is minted, recognised,
// crafted and smelted back.
package coin

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"realcoins/internal/sim/tuning"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/tags"
)

// MarkerValue is the value stored under the coin tag of every minted stack.
const MarkerValue = "Coin"

var ErrBadMaterial = errors.New("coin: unusable item material")

type Minter struct {
	material    string
	displayName string
	texture     string
	smeltExp    int
	smeltTicks  int
}

// NewMinter resolves the configured appearance once. An unusable material is
// a startup misconfiguration and is returned as an error.
func NewMinter(cfg tuning.Coin, log *zap.Logger) (*Minter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Minter{
		displayName: cfg.DisplayName,
		smeltExp:    cfg.SmeltExp,
		smeltTicks:  cfg.SmeltTime,
	}
	if cfg.UseHead {
		m.material = modelpkg.PlayerHead
		m.texture = cfg.HeadValue
		if m.texture == "" {
			log.Warn("coin head texture missing, using plain head", zap.String("owner", cfg.HeadPlayerUUID))
		}
		return m, nil
	}
	mat := modelpkg.NormalizeMaterial(cfg.Material)
	if mat == modelpkg.Air || !modelpkg.IsKnownMaterial(mat) || modelpkg.IsContainer(mat) {
		return nil, fmt.Errorf("%w: %q", ErrBadMaterial, cfg.Material)
	}
	m.material = mat
	return m, nil
}

func (m *Minter) Material() string { return m.material }

// Mint returns one stack of n coins, capped at the stack maximum.
// n <= 0 yields nil.
func (m *Minter) Mint(n int) *modelpkg.ItemStack {
	if n <= 0 {
		return nil
	}
	s := &modelpkg.ItemStack{
		Material:    m.material,
		DisplayName: m.displayName,
		Texture:     m.texture,
	}
	s.SetTag(tags.Coin, MarkerValue)
	s.Amount = min(n, s.MaxStackSize())
	return s
}

// MintStacks splits n coins into full stacks plus a remainder.
func (m *Minter) MintStacks(n int) []*modelpkg.ItemStack {
	var out []*modelpkg.ItemStack
	for n > 0 {
		s := m.Mint(n)
		out = append(out, s)
		n -= s.Amount
	}
	return out
}

// IsCurrency only looks at the coin tag; a look-alike stack is not currency.
func IsCurrency(s *modelpkg.ItemStack) bool {
	return !s.IsEmpty() && s.HasTag(tags.Coin)
}

// Count sums the coins in inv.
func Count(inv *modelpkg.Inventory) int {
	total := 0
	for _, s := range inv.Contents() {
		if IsCurrency(s) {
			total += s.Amount
		}
	}
	return total
}

// MarkDisplay stamps the non-fungible display marker onto s.
func MarkDisplay(s *modelpkg.ItemStack) {
	if s == nil {
		return
	}
	s.SetTag(tags.DisplayItem, "1")
}

func IsDisplay(s *modelpkg.ItemStack) bool {
	return !s.IsEmpty() && s.HasTag(tags.DisplayItem)
}

// ConsumeOutcome is the reaction to a player trying to eat an item.
type ConsumeOutcome int

const (
	ConsumeAllowed ConsumeOutcome = iota
	// ConsumeBlocked stops a named item of the coin material without a message.
	ConsumeBlocked
	ConsumeBlockedFake
	ConsumeBlockedReal
)

// Consume decides whether s may be eaten. Only named stacks of the coin
// material are stopped; untagged ones that call themselves a coin are fakes.
func (m *Minter) Consume(s *modelpkg.ItemStack) ConsumeOutcome {
	if s.IsEmpty() || s.Material != m.material || s.DisplayName == "" {
		return ConsumeAllowed
	}
	if IsCurrency(s) {
		return ConsumeBlockedReal
	}
	if strings.Contains(strings.ToLower(s.DisplayName), "coin") {
		return ConsumeBlockedFake
	}
	return ConsumeBlocked
}

// SmeltAllowed keeps look-alikes of the coin material out of the smelt-back recipe.
func (m *Minter) SmeltAllowed(source *modelpkg.ItemStack) bool {
	if source.IsEmpty() || source.Material != m.material {
		return true
	}
	return IsCurrency(source)
}

// PlacementBlocked reports whether a head-style coin would be placed as a block.
func PlacementBlocked(item *modelpkg.ItemStack) bool {
	return !item.IsEmpty() && item.Material == modelpkg.PlayerHead && IsCurrency(item)
}
