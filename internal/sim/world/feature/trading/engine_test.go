package trading

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"realcoins/internal/sim/tuning"
	"realcoins/internal/sim/world/feature/coin"
	"realcoins/internal/sim/world/feature/station"
	"realcoins/internal/sim/world/kernel/grid"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/sched"
	"realcoins/internal/sim/world/kernel/tags"
)

type ledger map[modelpkg.PlayerID]int

func (l ledger) Credit(p modelpkg.PlayerID, n int) { l[p] += n }

type fixture struct {
	t         *testing.T
	grid      *grid.Grid
	store     *tags.Memory
	queue     *sched.Queue
	paid      ledger
	minter    *coin.Minter
	engine    *Engine
	owner     *modelpkg.Player
	container modelpkg.Location
	sign      modelpkg.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m, err := coin.NewMinter(tuning.Defaults().Coin, zap.NewNop())
	if err != nil {
		t.Fatalf("NewMinter: %v", err)
	}
	f := &fixture{
		t:      t,
		grid:   grid.New(),
		store:  tags.NewMemory(),
		queue:  sched.NewQueue(),
		paid:   ledger{},
		minter: m,
		owner:  &modelpkg.Player{ID: uuid.New(), Name: "alice", Online: true},
	}
	reg := station.NewRegistry(f.grid, f.store)
	f.engine = NewEngine(f.grid, reg, f.store, f.queue, f.paid, zap.NewNop())
	f.container = modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{Y: 64}}
	f.grid.PlaceContainer(f.container, modelpkg.Chest, 27)
	f.sign = f.grid.PlaceWallSign(f.container, modelpkg.North, "OAK_WALL_SIGN")
	return f
}

func (f *fixture) inv() *modelpkg.Inventory { return f.grid.Block(f.container).Inventory }

func (f *fixture) lines() [4]string { return f.grid.Block(f.sign).Sign.Lines }

func (f *fixture) create(item *modelpkg.ItemStack) {
	f.t.Helper()
	if err := f.engine.Create(f.sign, f.owner, item); err != nil {
		f.t.Fatalf("Create: %v", err)
	}
}

func (f *fixture) post() Post {
	f.t.Helper()
	p, err := f.engine.Post(f.container)
	if err != nil {
		f.t.Fatalf("Post: %v", err)
	}
	return p
}

func TestCreateWritesPostAndLabel(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("OAK_LOG", 4))

	p := f.post()
	if p.Owner != f.owner.ID || p.Lot != 4 || p.Price != 0 || p.Stock != 0 || p.Template.Material != "OAK_LOG" {
		t.Fatalf("unexpected post: %+v", p)
	}
	d := f.inv().Get(DisplaySlot)
	if d == nil || d.Amount != 1 || !coin.IsDisplay(d) {
		t.Fatalf("display item missing: %+v", d)
	}
	want := [4]string{"§0§l alice", "oak log", "§4§l4§0 = §4§l0§0 ¢", "stock: 0"}
	if got := f.lines(); got != want {
		t.Fatalf("lines=%q, want %q", got, want)
	}
	if !f.grid.Block(f.sign).Sign.Glowing {
		t.Fatalf("sign must glow")
	}
}

func TestCreateRefusals(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.Create(f.sign, f.owner, f.minter.Mint(3)); !errors.Is(err, ErrCurrencyNotTradable) {
		t.Fatalf("err=%v, want ErrCurrencyNotTradable", err)
	}

	f.inv().Set(DisplaySlot, modelpkg.NewItem("DIRT", 1))
	if err := f.engine.Create(f.sign, f.owner, modelpkg.NewItem("STONE", 1)); !errors.Is(err, ErrReserveOccupied) {
		t.Fatalf("err=%v, want ErrReserveOccupied", err)
	}
	if keys := f.store.Object(f.sign.Ref()).Keys(); len(keys) != 0 {
		t.Fatalf("refused creation left tags: %v", keys)
	}

	free := f.grid.PlaceWallSign(modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{X: 10}}, modelpkg.East, "OAK_WALL_SIGN")
	if err := f.engine.Create(free, f.owner, modelpkg.NewItem("STONE", 1)); !errors.Is(err, ErrNoContainer) {
		t.Fatalf("err=%v, want ErrNoContainer", err)
	}
}

func TestCreateRefusesSecondSignOnContainer(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("STONE", 1))
	f.inv().Set(DisplaySlot, nil)
	second := f.grid.PlaceWallSign(f.container, modelpkg.South, "OAK_WALL_SIGN")
	if err := f.engine.Create(second, f.owner, modelpkg.NewItem("DIRT", 1)); !errors.Is(err, ErrAlreadyStation) {
		t.Fatalf("err=%v, want ErrAlreadyStation", err)
	}
}

func TestCreateRefusesContainerWithVaultSign(t *testing.T) {
	f := newFixture(t)
	vaultSign := f.grid.PlaceWallSign(f.container, modelpkg.East, "OAK_WALL_SIGN")
	f.store.Object(vaultSign.Ref()).Set(tags.CoinSign, "coinStorageChest")

	if err := f.engine.Create(f.sign, f.owner, modelpkg.NewItem("APPLE", 1)); !errors.Is(err, ErrAlreadyStation) {
		t.Fatalf("err=%v, want ErrAlreadyStation", err)
	}
	if f.inv().Get(DisplaySlot) != nil || len(f.store.Object(f.sign.Ref()).Keys()) != 0 {
		t.Fatalf("refused creation must leave nothing behind")
	}
}

func TestBuyScenario(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("APPLE", 1))
	for i := 0; i < 5; i++ {
		if ok, err := f.engine.ChangePrice(f.sign, f.minter.Mint(1), 1); err != nil || !ok {
			t.Fatalf("ChangePrice: ok=%v err=%v", ok, err)
		}
	}
	tags.SetInt(f.store.Object(f.sign.Ref()), tags.TradeAmount, 20)
	f.inv().Set(5, f.minter.Mint(12))

	if err := f.engine.ExecuteTrade(f.container, f.minter.Mint(12)); err != nil {
		t.Fatalf("ExecuteTrade: %v", err)
	}
	if f.post().Stock != 20 {
		t.Fatalf("trade must wait for the next drain")
	}
	f.queue.Drain()

	p := f.post()
	if p.Stock != 18 || p.Price != 5 {
		t.Fatalf("stock=%d price=%d, want 18 and 5", p.Stock, p.Price)
	}
	if f.paid[f.owner.ID] != 10 {
		t.Fatalf("owner credited %d, want 10", f.paid[f.owner.ID])
	}
	if got := coin.Count(f.inv()); got != 2 {
		t.Fatalf("coins left=%d, want 2", got)
	}
	apples := 0
	for _, s := range f.inv().Contents() {
		if s.Material == "APPLE" && !coin.IsDisplay(s) {
			apples += s.Amount
		}
	}
	if apples != 2 {
		t.Fatalf("apples delivered=%d, want 2", apples)
	}
	if got := f.lines()[3]; got != "stock: 18" {
		t.Fatalf("stock line=%q", got)
	}
	if got := f.lines()[2]; got != "§2§l1§0 = §2§l5§0 ¢" {
		t.Fatalf("price line=%q", got)
	}
}

func TestExecuteTradeRefusesNonCurrency(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("APPLE", 1))
	if err := f.engine.ExecuteTrade(f.container, modelpkg.NewItem("DIRT", 3)); !errors.Is(err, ErrPaymentNotCurrency) {
		t.Fatalf("err=%v, want ErrPaymentNotCurrency", err)
	}
	if keys := f.queue.Drain(); len(keys) != 0 {
		t.Fatalf("refused payment must not schedule work: %v", keys)
	}
	other := modelpkg.Location{World: "w", Pos: modelpkg.Vec3i{X: 40}}
	f.grid.PlaceContainer(other, modelpkg.Chest, 27)
	if err := f.engine.ExecuteTrade(other, f.minter.Mint(1)); !errors.Is(err, ErrNotTradingBlock) {
		t.Fatalf("err=%v, want ErrNotTradingBlock", err)
	}
}

func TestTradeOverflowDropsAtSign(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("STONE", 64))
	obj := f.store.Object(f.sign.Ref())
	tags.SetInt(obj, tags.TradePrice, 1)
	tags.SetInt(obj, tags.TradeAmount, 640)
	inv := f.inv()
	for i := 1; i < inv.Size(); i++ {
		inv.Set(i, modelpkg.NewItem("DIRT", 64))
	}
	inv.Set(26, f.minter.Mint(1))

	if err := f.engine.ExecuteTrade(f.container, f.minter.Mint(1)); err != nil {
		t.Fatalf("ExecuteTrade: %v", err)
	}
	f.queue.Drain()
	drops := f.grid.TakeDrops()
	if len(drops) != 0 {
		t.Fatalf("expected goods to land in the freed slot, got %d drops", len(drops))
	}
	if got := inv.Get(26); got == nil || got.Material != "STONE" || got.Amount != 64 {
		t.Fatalf("slot 26=%+v", got)
	}

	inv.Set(26, modelpkg.NewItem("DIRT", 64))
	inv.Set(25, f.minter.Mint(1))
	tags.SetInt(obj, tags.TradePieces, 100)
	if err := f.engine.ExecuteTrade(f.container, f.minter.Mint(1)); err != nil {
		t.Fatalf("ExecuteTrade: %v", err)
	}
	f.queue.Drain()
	drops = f.grid.TakeDrops()
	total := 0
	for _, d := range drops {
		if d.At != f.sign {
			t.Fatalf("overflow dropped at %v, want sign", d.At)
		}
		total += d.Item.Amount
	}
	if total != 36 {
		t.Fatalf("dropped %d pieces, want 36", total)
	}
}

func TestRestockFoldsMatchingStacks(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("BREAD", 1))
	f.inv().Set(3, modelpkg.NewItem("BREAD", 4))
	f.inv().Set(9, modelpkg.NewItem("BREAD", 3))
	f.inv().Set(10, modelpkg.NewItem("DIRT", 3))

	if err := f.engine.Restock(f.container); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	f.queue.Drain()

	if got := f.post().Stock; got != 7 {
		t.Fatalf("stock=%d, want 7", got)
	}
	if f.inv().Get(3) != nil || f.inv().Get(9) != nil {
		t.Fatalf("restocked pieces must leave the container")
	}
	if f.inv().Get(10) == nil || !coin.IsDisplay(f.inv().Get(DisplaySlot)) {
		t.Fatalf("unrelated stacks and the display item must stay")
	}
	if got := f.lines()[3]; got != "stock: 7" {
		t.Fatalf("stock line=%q", got)
	}
}

func TestRestockFallsBackToTrade(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("BREAD", 2))
	obj := f.store.Object(f.sign.Ref())
	tags.SetInt(obj, tags.TradePrice, 3)
	tags.SetInt(obj, tags.TradeAmount, 10)
	f.inv().Set(4, f.minter.Mint(7))

	if err := f.engine.Restock(f.container); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	f.queue.Drain()
	if got := f.post().Stock; got != 6 {
		t.Fatalf("stock=%d, want 6", got)
	}
	if f.paid[f.owner.ID] != 6 {
		t.Fatalf("paid=%d, want 6", f.paid[f.owner.ID])
	}
}

func TestChangePriceClampsAtZero(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("STONE", 3))
	if _, err := f.engine.ChangePrice(f.sign, f.minter.Mint(4), 4); err != nil {
		t.Fatalf("ChangePrice: %v", err)
	}
	if _, err := f.engine.ChangePrice(f.sign, f.minter.Mint(9), -9); err != nil {
		t.Fatalf("ChangePrice: %v", err)
	}
	if _, err := f.engine.ChangePrice(f.sign, modelpkg.NewItem("STONE", 10), -10); err != nil {
		t.Fatalf("ChangePrice: %v", err)
	}
	p := f.post()
	if p.Price != 0 || p.Lot != 0 {
		t.Fatalf("price=%d lot=%d, want 0 and 0", p.Price, p.Lot)
	}
	if ok, _ := f.engine.ChangePrice(f.sign, modelpkg.NewItem("DIRT", 1), 1); ok {
		t.Fatalf("unrelated item must not change anything")
	}
}

func TestDestroyEjectsStockInStacks(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("COBBLESTONE", 1))
	tags.SetInt(f.store.Object(f.sign.Ref()), tags.TradeAmount, 130)

	n, err := f.engine.Destroy(f.sign)
	if err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if n != 130 {
		t.Fatalf("ejected %d, want 130", n)
	}
	drops := f.grid.TakeDrops()
	if len(drops) != 3 || drops[0].Item.Amount != 64 || drops[1].Item.Amount != 64 || drops[2].Item.Amount != 2 {
		t.Fatalf("unexpected drops: %+v", drops)
	}
	if drops[0].At != f.sign.Up() {
		t.Fatalf("drops at %v, want first air above the sign", drops[0].At)
	}
	if f.inv().Get(DisplaySlot) != nil {
		t.Fatalf("display slot must be cleared")
	}
	if len(f.store.Object(f.sign.Ref()).Keys()) != 0 {
		t.Fatalf("post tags must be removed")
	}
	if _, err := f.engine.Post(f.sign); !errors.Is(err, ErrNotTradingBlock) {
		t.Fatalf("err=%v, want ErrNotTradingBlock", err)
	}
}

func TestDestroyUnreadablePostClearsDisplay(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("APPLE", 1))
	f.store.Object(f.sign.Ref()).Set(tags.TradeMaterial, "garbage")

	if _, err := f.engine.Destroy(f.container); !errors.Is(err, ErrSignUnreadable) {
		t.Fatalf("err=%v, want ErrSignUnreadable", err)
	}
	if f.inv().Get(DisplaySlot) != nil {
		t.Fatalf("display item left in the container")
	}
	if len(f.store.Object(f.sign.Ref()).Keys()) != 0 {
		t.Fatalf("post tags must be removed")
	}
	if drops := f.grid.TakeDrops(); len(drops) != 0 {
		t.Fatalf("unexpected drops: %+v", drops)
	}
}

func TestUnreadableSign(t *testing.T) {
	f := newFixture(t)
	f.create(modelpkg.NewItem("STONE", 1))
	f.store.Object(f.sign.Ref()).Set(tags.TradeMaterial, "garbage")
	if _, err := f.engine.Post(f.container); !errors.Is(err, ErrSignUnreadable) {
		t.Fatalf("err=%v, want ErrSignUnreadable", err)
	}
	if err := f.engine.ExecuteTrade(f.container, f.minter.Mint(1)); !errors.Is(err, ErrSignUnreadable) {
		t.Fatalf("err=%v, want ErrSignUnreadable", err)
	}
}
