// Package station resolves the sign/container pairs that make up vaults and
// trading posts.
package station

import (
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/tags"
)

type Kind int

const (
	None Kind = iota
	Vault
	Trading
)

func (k Kind) String() string {
	switch k {
	case Vault:
		return "VAULT"
	case Trading:
		return "TRADING"
	}
	return "NONE"
}

func (k Kind) marker() string {
	switch k {
	case Vault:
		return tags.CoinSign
	case Trading:
		return tags.TradeSign
	}
	return ""
}

type BlockEnv interface {
	Block(loc modelpkg.Location) *modelpkg.Block
}

type Registry struct {
	blocks BlockEnv
	tags   tags.Store
}

func NewRegistry(blocks BlockEnv, store tags.Store) *Registry {
	return &Registry{blocks: blocks, tags: store}
}

// Classify reads the marker tags of the wall sign at loc. Trading wins if a
// sign somehow carries both.
func (r *Registry) Classify(loc modelpkg.Location) Kind {
	b := r.blocks.Block(loc)
	if b == nil || !modelpkg.IsWallSign(b.Material) {
		return None
	}
	obj := r.tags.Object(loc.Ref())
	switch {
	case obj.Has(tags.TradeSign):
		return Trading
	case obj.Has(tags.CoinSign):
		return Vault
	}
	return None
}

func (r *Registry) isSignOf(loc modelpkg.Location, kind Kind) bool {
	return kind != None && r.Classify(loc) == kind
}

// SupportOf returns the block a wall sign hangs on.
func (r *Registry) SupportOf(sign modelpkg.Location) (modelpkg.Location, bool) {
	b := r.blocks.Block(sign)
	if b == nil || !modelpkg.IsWallSign(b.Material) {
		return modelpkg.Location{}, false
	}
	return sign.Relative(b.Facing.Opposite()), true
}

// FindAdjacentStation scans the horizontal neighbours of container for a sign
// of kind that hangs on container itself.
func (r *Registry) FindAdjacentStation(container modelpkg.Location, kind Kind) (modelpkg.Location, bool) {
	for _, f := range modelpkg.HorizontalFaces {
		cand := container.Relative(f)
		if !r.isSignOf(cand, kind) {
			continue
		}
		if support, ok := r.SupportOf(cand); ok && support == container {
			return cand, true
		}
	}
	return modelpkg.Location{}, false
}

// SignOf accepts either the sign itself or the block it is attached to.
func (r *Registry) SignOf(loc modelpkg.Location, kind Kind) (modelpkg.Location, bool) {
	if r.isSignOf(loc, kind) {
		return loc, true
	}
	return r.FindAdjacentStation(loc, kind)
}

// IsInventoryBlock is true for containers that may hold station stock or
// coins. Item-moving blocks are excluded.
func (r *Registry) IsInventoryBlock(loc modelpkg.Location) bool {
	b := r.blocks.Block(loc)
	if b == nil || b.Inventory == nil {
		return false
	}
	return modelpkg.IsContainer(b.Material) && !modelpkg.IsAutomation(b.Material)
}

func (r *Registry) IsTradingContainer(loc modelpkg.Location) bool {
	if !r.IsInventoryBlock(loc) {
		return false
	}
	_, ok := r.FindAdjacentStation(loc, Trading)
	return ok
}

func (r *Registry) IsVaultContainer(loc modelpkg.Location) bool {
	if !r.IsInventoryBlock(loc) {
		return false
	}
	_, ok := r.FindAdjacentStation(loc, Vault)
	return ok
}

// IsTradingBlock covers both halves of a trading post.
func (r *Registry) IsTradingBlock(loc modelpkg.Location) bool {
	return r.Classify(loc) == Trading || r.IsTradingContainer(loc)
}

// NextAirAbove walks up from loc to the first air block.
func (r *Registry) NextAirAbove(loc modelpkg.Location) modelpkg.Location {
	for !r.blocks.Block(loc).IsAir() {
		loc = loc.Up()
	}
	return loc
}
