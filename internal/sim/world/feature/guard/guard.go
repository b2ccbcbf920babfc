// Package guard holds the protection checks shared by the station features
// and the event dispatcher.
package guard

import (
	"github.com/google/uuid"

	"realcoins/internal/sim/world/feature/coin"
	"realcoins/internal/sim/world/feature/station"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/tags"
)

type Guard struct {
	blocks station.BlockEnv
	reg    *station.Registry
	tags   tags.Store
}

func New(blocks station.BlockEnv, reg *station.Registry, store tags.Store) *Guard {
	return &Guard{blocks: blocks, reg: reg, tags: store}
}

// tradingOwner reads the owner of the trading post at loc. ok is false when
// loc is not part of a post; known is false when the owner tag is unreadable.
func (g *Guard) tradingOwner(loc modelpkg.Location) (owner modelpkg.PlayerID, known bool, ok bool) {
	sign, ok := g.reg.SignOf(loc, station.Trading)
	if !ok {
		return modelpkg.PlayerID{}, false, false
	}
	raw, _ := g.tags.Object(sign.Ref()).Get(tags.TradeOwner)
	id, err := uuid.Parse(raw)
	if err != nil {
		return modelpkg.PlayerID{}, false, true
	}
	return id, true, true
}

func privileged(p *modelpkg.Player) bool {
	return p != nil && p.Op && p.GameMode == modelpkg.Creative
}

// KeepBlock reports whether breaking loc must be refused. actor is nil for
// fire, explosions, pistons and other world damage, which never destroy a
// trading block. Owners may break their own posts. An operator in creative
// mode may break any trading container, but a trading sign only if it is
// theirs or its owner is unreadable.
func (g *Guard) KeepBlock(loc modelpkg.Location, actor *modelpkg.Player) bool {
	isSign := g.reg.Classify(loc) == station.Trading
	isContainer := !isSign && g.reg.IsTradingContainer(loc)
	if !isSign && !isContainer {
		return false
	}
	if actor == nil {
		return true
	}
	owner, known, _ := g.tradingOwner(loc)
	if known && owner == actor.ID {
		return false
	}
	if privileged(actor) {
		return isSign && known
	}
	return true
}

// FilterEnvironmental drops the protected blocks from an explosion list.
func (g *Guard) FilterEnvironmental(locs []modelpkg.Location) []modelpkg.Location {
	out := locs[:0:0]
	for _, loc := range locs {
		if !g.KeepBlock(loc, nil) {
			out = append(out, loc)
		}
	}
	return out
}

// BlocksPistonMove is true if any block a piston would move is protected.
func (g *Guard) BlocksPistonMove(locs []modelpkg.Location) bool {
	for _, loc := range locs {
		if g.KeepBlock(loc, nil) {
			return true
		}
	}
	return false
}

// CanAttachStation reports whether a freshly written station sign may stay:
// it must hang on an inventory block that has no station sign yet.
func (g *Guard) CanAttachStation(sign modelpkg.Location) bool {
	support, ok := g.reg.SupportOf(sign)
	if !ok || !g.reg.IsInventoryBlock(support) {
		return false
	}
	for _, kind := range []station.Kind{station.Trading, station.Vault} {
		if found, taken := g.reg.FindAdjacentStation(support, kind); taken && found != sign {
			return false
		}
	}
	return true
}

// BlocksAutomation is true if an automated item move touches a trading
// container. Either end may be nil when it is not a block.
func (g *Guard) BlocksAutomation(src, dst *modelpkg.Location) bool {
	for _, loc := range []*modelpkg.Location{src, dst} {
		if loc != nil && g.reg.IsTradingContainer(*loc) {
			return true
		}
	}
	return false
}

// BlocksChestMerge is true if placing material at loc would join a chest
// onto a trading container.
func (g *Guard) BlocksChestMerge(loc modelpkg.Location, material string) bool {
	if !modelpkg.IsChest(material) {
		return false
	}
	for _, f := range modelpkg.HorizontalFaces {
		n := loc.Relative(f)
		b := g.blocks.Block(n)
		if b != nil && b.Material == material && g.reg.IsTradingContainer(n) {
			return true
		}
	}
	return false
}

// IsDisplayItem is true for the display stack of a trading post. It can
// never be picked up, dragged or spent.
func IsDisplayItem(s *modelpkg.ItemStack) bool { return coin.IsDisplay(s) }
