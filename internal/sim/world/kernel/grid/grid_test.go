package grid

import (
	"testing"

	modelpkg "realcoins/internal/sim/world/kernel/model"
)

func TestBreakNaturallyDropsBlockAndContents(t *testing.T) {
	g := New()
	chest := modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{X: 1}}
	b := g.PlaceContainer(chest, modelpkg.Chest, 27)
	b.Inventory.Set(3, modelpkg.NewItem("STONE", 5))
	sign := g.PlaceWallSign(chest, modelpkg.North, "OAK_WALL_SIGN")

	g.BreakNaturally(sign)
	g.BreakNaturally(chest)
	if g.Block(chest) != nil || g.Block(sign) != nil {
		t.Fatalf("blocks not removed")
	}
	drops := g.TakeDrops()
	if len(drops) != 3 {
		t.Fatalf("drops=%d, want 3", len(drops))
	}
	if drops[0].Item.Material != "OAK_SIGN" {
		t.Fatalf("sign dropped as %s", drops[0].Item.Material)
	}
	if len(g.Drops()) != 0 {
		t.Fatalf("TakeDrops must clear")
	}
}

func TestLocationsSorted(t *testing.T) {
	g := New()
	for _, x := range []int{3, -1, 2} {
		g.Set(modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{X: x}}, &modelpkg.Block{Material: "STONE"})
	}
	locs := g.Locations()
	if len(locs) != 3 || locs[0].Pos.X != -1 || locs[2].Pos.X != 3 {
		t.Fatalf("unexpected order: %v", locs)
	}
}
