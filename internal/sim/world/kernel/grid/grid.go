// Package grid stores the placed blocks of every world and the items dropped
// onto them.
package grid

import (
	"sort"
	"strings"

	modelpkg "realcoins/internal/sim/world/kernel/model"
)

// Drop is an item entity lying in the world.
type Drop struct {
	At   modelpkg.Location
	Item *modelpkg.ItemStack
}

// Grid is not safe for concurrent use; the world loop owns it.
type Grid struct {
	blocks map[modelpkg.Location]*modelpkg.Block
	drops  []Drop
}

func New() *Grid {
	return &Grid{blocks: map[modelpkg.Location]*modelpkg.Block{}}
}

// Block returns the block at loc, or nil for air.
func (g *Grid) Block(loc modelpkg.Location) *modelpkg.Block {
	return g.blocks[loc]
}

func (g *Grid) Set(loc modelpkg.Location, b *modelpkg.Block) {
	if b.IsAir() {
		delete(g.blocks, loc)
		return
	}
	g.blocks[loc] = b
}

func (g *Grid) Remove(loc modelpkg.Location) *modelpkg.Block {
	b := g.blocks[loc]
	delete(g.blocks, loc)
	return b
}

// BreakNaturally removes the block and drops it together with its contents.
func (g *Grid) BreakNaturally(loc modelpkg.Location) {
	b := g.Remove(loc)
	if b == nil {
		return
	}
	g.Drop(loc, modelpkg.NewItem(ItemForm(b.Material), 1))
	for _, s := range b.Inventory.Contents() {
		g.Drop(loc, s.Clone())
	}
}

// ItemForm maps a placed block material to the item it drops as.
func ItemForm(material string) string {
	if modelpkg.IsWallSign(material) {
		return strings.Replace(material, "_WALL_SIGN", "_SIGN", 1)
	}
	return material
}

func (g *Grid) Drop(loc modelpkg.Location, s *modelpkg.ItemStack) {
	if s.IsEmpty() {
		return
	}
	g.drops = append(g.drops, Drop{At: loc, Item: s})
}

func (g *Grid) Drops() []Drop { return g.drops }

// TakeDrops returns and clears the pending drops.
func (g *Grid) TakeDrops() []Drop {
	out := g.drops
	g.drops = nil
	return out
}

// Locations lists every non-air location in a stable order.
func (g *Grid) Locations() []modelpkg.Location {
	out := make([]modelpkg.Location, 0, len(g.blocks))
	for loc := range g.blocks {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.World != b.World {
			return a.World < b.World
		}
		if a.Pos.X != b.Pos.X {
			return a.Pos.X < b.Pos.X
		}
		if a.Pos.Y != b.Pos.Y {
			return a.Pos.Y < b.Pos.Y
		}
		return a.Pos.Z < b.Pos.Z
	})
	return out
}

// PlaceWallSign hangs an empty sign on the face of support.
func (g *Grid) PlaceWallSign(support modelpkg.Location, face modelpkg.Face, material string) modelpkg.Location {
	loc := support.Relative(face)
	g.Set(loc, &modelpkg.Block{Material: material, Facing: face, Sign: &modelpkg.Sign{}})
	return loc
}

// PlaceContainer puts an empty container of the given size at loc.
func (g *Grid) PlaceContainer(loc modelpkg.Location, material string, size int) *modelpkg.Block {
	b := &modelpkg.Block{Material: material, Inventory: modelpkg.NewInventory(size)}
	g.Set(loc, b)
	return b
}
