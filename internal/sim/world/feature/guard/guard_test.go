package guard

import (
	"testing"

	"github.com/google/uuid"

	"realcoins/internal/sim/world/feature/station"
	"realcoins/internal/sim/world/kernel/grid"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/tags"
)

type fixture struct {
	grid      *grid.Grid
	store     *tags.Memory
	guard     *Guard
	owner     *modelpkg.Player
	container modelpkg.Location
	sign      modelpkg.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		grid:  grid.New(),
		store: tags.NewMemory(),
		owner: &modelpkg.Player{ID: uuid.New(), Name: "owner", GameMode: modelpkg.Survival},
	}
	f.guard = New(f.grid, station.NewRegistry(f.grid, f.store), f.store)
	f.container = modelpkg.Location{World: "w"}
	f.grid.PlaceContainer(f.container, modelpkg.Chest, 27)
	f.sign = f.grid.PlaceWallSign(f.container, modelpkg.North, "OAK_WALL_SIGN")
	obj := f.store.Object(f.sign.Ref())
	obj.Set(tags.TradeSign, "1")
	obj.Set(tags.TradeOwner, f.owner.ID.String())
	return f
}

func TestKeepBlock(t *testing.T) {
	f := newFixture(t)
	stranger := &modelpkg.Player{ID: uuid.New(), GameMode: modelpkg.Survival}
	admin := &modelpkg.Player{ID: uuid.New(), Op: true, GameMode: modelpkg.Creative}
	survivalOp := &modelpkg.Player{ID: uuid.New(), Op: true, GameMode: modelpkg.Survival}
	plain := modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{X: 30}}
	f.grid.Set(plain, &modelpkg.Block{Material: "STONE"})

	cases := []struct {
		name  string
		loc   modelpkg.Location
		actor *modelpkg.Player
		keep  bool
	}{
		{"owner breaks sign", f.sign, f.owner, false},
		{"owner breaks container", f.container, f.owner, false},
		{"stranger breaks sign", f.sign, stranger, true},
		{"stranger breaks container", f.container, stranger, true},
		{"creative op breaks container", f.container, admin, false},
		{"creative op breaks foreign sign", f.sign, admin, true},
		{"survival op breaks container", f.container, survivalOp, true},
		{"explosion hits sign", f.sign, nil, true},
		{"explosion hits container", f.container, nil, true},
		{"stranger breaks plain block", plain, stranger, false},
	}
	for _, tc := range cases {
		if got := f.guard.KeepBlock(tc.loc, tc.actor); got != tc.keep {
			t.Fatalf("%s: keep=%v, want %v", tc.name, got, tc.keep)
		}
	}
}

func TestUnreadableOwnerSignBreakableByCreativeOp(t *testing.T) {
	f := newFixture(t)
	f.store.Object(f.sign.Ref()).Set(tags.TradeOwner, "???")
	admin := &modelpkg.Player{ID: uuid.New(), Op: true, GameMode: modelpkg.Creative}
	if f.guard.KeepBlock(f.sign, admin) {
		t.Fatalf("ownerless sign must be removable by a creative operator")
	}
	if !f.guard.KeepBlock(f.sign, f.owner) {
		t.Fatalf("ownerless sign must stay for everyone else")
	}
}

func TestFilterEnvironmental(t *testing.T) {
	f := newFixture(t)
	other := modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{X: 5}}
	f.grid.Set(other, &modelpkg.Block{Material: "STONE"})
	got := f.guard.FilterEnvironmental([]modelpkg.Location{f.sign, other, f.container})
	if len(got) != 1 || got[0] != other {
		t.Fatalf("got %v", got)
	}
	if !f.guard.BlocksPistonMove([]modelpkg.Location{other, f.container}) {
		t.Fatalf("pistons must not move trading blocks")
	}
}

func TestCanAttachStation(t *testing.T) {
	f := newFixture(t)
	if !f.guard.CanAttachStation(f.sign) {
		t.Fatalf("an existing station sign may stay")
	}
	second := f.grid.PlaceWallSign(f.container, modelpkg.East, "OAK_WALL_SIGN")
	if f.guard.CanAttachStation(second) {
		t.Fatalf("a second station on the same container must be refused")
	}
	hopper := modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{X: 20}}
	f.grid.PlaceContainer(hopper, modelpkg.Hopper, 5)
	if f.guard.CanAttachStation(f.grid.PlaceWallSign(hopper, modelpkg.West, "OAK_WALL_SIGN")) {
		t.Fatalf("hoppers can not host stations")
	}
	free := modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{X: 40}}
	f.grid.PlaceContainer(free, modelpkg.Barrel, 27)
	if !f.guard.CanAttachStation(f.grid.PlaceWallSign(free, modelpkg.West, "OAK_WALL_SIGN")) {
		t.Fatalf("a free barrel may host a station")
	}
}

func TestAutomationAndChestMerge(t *testing.T) {
	f := newFixture(t)
	hopper := f.container.Up()
	f.grid.PlaceContainer(hopper, modelpkg.Hopper, 5)
	if !f.guard.BlocksAutomation(&hopper, &f.container) || !f.guard.BlocksAutomation(&f.container, nil) {
		t.Fatalf("moves into or out of a trading container must be blocked")
	}
	if f.guard.BlocksAutomation(&hopper, nil) {
		t.Fatalf("unrelated moves must pass")
	}
	beside := f.container.Relative(modelpkg.East)
	if !f.guard.BlocksChestMerge(beside, modelpkg.Chest) {
		t.Fatalf("chest beside a trading chest must be refused")
	}
	if f.guard.BlocksChestMerge(beside, modelpkg.TrappedChest) || f.guard.BlocksChestMerge(beside, modelpkg.Barrel) {
		t.Fatalf("different materials never merge")
	}
}
