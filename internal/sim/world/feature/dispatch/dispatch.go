package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"realcoins/internal/protocol"
	"realcoins/internal/sim/tuning"
	"realcoins/internal/sim/world/feature/coin"
	"realcoins/internal/sim/world/feature/guard"
	"realcoins/internal/sim/world/feature/station"
	"realcoins/internal/sim/world/feature/trading"
	"realcoins/internal/sim/world/feature/vault"
	modelpkg "realcoins/internal/sim/world/kernel/model"
)

type Env interface {
	Block(loc modelpkg.Location) *modelpkg.Block
	BreakNaturally(loc modelpkg.Location)
}

// Services are the economy features a Dispatcher routes to.
type Services struct {
	Registry *station.Registry
	Engine   *trading.Engine
	Buffer   *vault.Buffer
	Guard    *guard.Guard
	Minter   *coin.Minter
}

// Dispatcher rules on host events. It is owned by the world goroutine.
type Dispatcher struct {
	env Env
	Services
	cfg tuning.Config
	log *zap.Logger
}

func New(env Env, svc Services, cfg tuning.Config, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{env: env, Services: svc, cfg: cfg, log: log}
}

// Action is the mouse gesture of a sign interaction.
type Action int

const (
	LeftClick Action = iota
	RightClick
)

func (a Action) sign() int {
	if a == LeftClick {
		return -1
	}
	return 1
}

// SignInteract handles a click on a wall sign while holding held. A right
// click on a sign carrying the trading prefix creates a post; on an existing
// post the owner adjusts price (coins) or lot size (the sold item).
func (d *Dispatcher) SignInteract(p *modelpkg.Player, sign modelpkg.Location, action Action, held *modelpkg.ItemStack) Verdict {
	b := d.env.Block(sign)
	if b == nil || b.Sign == nil || !modelpkg.IsWallSign(b.Material) || held.IsEmpty() {
		return allow()
	}
	if d.Registry.Classify(sign) != station.Trading {
		if b.Sign.Lines[0] != d.cfg.StorageChest.Prefix || action != RightClick {
			return allow()
		}
		if err := d.Engine.Create(sign, p, held); err != nil {
			d.log.Info("trading post refused", zap.String("sign", sign.Ref()), zap.Error(err))
			d.env.BreakNaturally(sign)
			return deny(codeFor(err), d.cfg.ErrorMessages.CreateTradingSign)
		}
		return allow()
	}

	owner, ok := d.Engine.Owner(sign)
	if !ok || owner != p.ID {
		return allow()
	}
	changed, err := d.Engine.ChangePrice(sign, held, held.Amount*action.sign())
	if err != nil {
		return deny(codeFor(err), d.messageFor(err))
	}
	if !changed {
		return allow()
	}
	return deny("", "")
}

// SignChange runs when a player finishes writing a sign. A sign carrying a
// station prefix must hang on a free inventory block or it is broken.
func (d *Dispatcher) SignChange(p *modelpkg.Player, sign modelpkg.Location, lines []string) Verdict {
	vaultSign := containsPrefix(lines, d.cfg.CoinSign.Prefix)
	tradingSign := containsPrefix(lines, d.cfg.StorageChest.Prefix)
	if !vaultSign && !tradingSign {
		return allow()
	}
	if !d.Guard.CanAttachStation(sign) {
		d.env.BreakNaturally(sign)
		return deny(protocol.ErrConflict, "")
	}
	if !vaultSign {
		return allow()
	}
	if err := d.Buffer.CreateVault(sign, p.ID); err != nil {
		d.log.Info("vault refused", zap.String("sign", sign.Ref()), zap.Error(err))
		d.env.BreakNaturally(sign)
		return deny(codeFor(err), d.cfg.ErrorMessages.CreateCoinChest)
	}
	return allow()
}

func containsPrefix(lines []string, prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, l := range lines {
		if strings.Contains(l, prefix) {
			return true
		}
	}
	return false
}

// Click describes an inventory click while a container is open.
type Click struct {
	// TopClicked is true when the click landed in the container, false for
	// the player's own inventory.
	TopClicked bool
	Shift      bool
	Current    *modelpkg.ItemStack
	Cursor     *modelpkg.ItemStack
}

// ContainerClick rules on clicks inside an open trading container. The owner
// restocks; anyone else pays with coins or takes the goods.
func (d *Dispatcher) ContainerClick(p *modelpkg.Player, container modelpkg.Location, c Click) Verdict {
	if !d.Registry.IsTradingContainer(container) {
		return allow()
	}
	if guard.IsDisplayItem(c.Current) || guard.IsDisplayItem(c.Cursor) {
		return deny(protocol.ErrBlocked, "")
	}
	if !c.TopClicked && !c.Shift {
		return allow()
	}
	template, err := d.Engine.Template(container)
	if err != nil {
		return deny(codeFor(err), d.cfg.ErrorMessages.InvalidTradeChest)
	}
	if owner, _ := d.Engine.Owner(container); owner == p.ID {
		return d.restock(container)
	}
	if c.TopClicked && template.IsSimilar(c.Current) {
		return allow()
	}
	primary := c.Current
	if primary.IsEmpty() {
		primary = c.Cursor
	}
	return d.buy(container, primary)
}

// ContainerDrag rules on a drag gesture across slots. Slots below topSize
// belong to the container.
func (d *Dispatcher) ContainerDrag(p *modelpkg.Player, container modelpkg.Location, cursor *modelpkg.ItemStack, slots []int, topSize int) Verdict {
	if !d.Registry.IsTradingContainer(container) {
		return allow()
	}
	if guard.IsDisplayItem(cursor) {
		return deny(protocol.ErrBlocked, "")
	}
	touchesTop := false
	for _, s := range slots {
		if s < topSize {
			touchesTop = true
			break
		}
	}
	if !touchesTop {
		return allow()
	}
	if owner, _ := d.Engine.Owner(container); owner == p.ID {
		return d.restock(container)
	}
	return d.buy(container, cursor)
}

func (d *Dispatcher) restock(container modelpkg.Location) Verdict {
	if err := d.Engine.Restock(container); err != nil {
		return deny(codeFor(err), d.messageFor(err))
	}
	return deferred("")
}

func (d *Dispatcher) buy(container modelpkg.Location, presented *modelpkg.ItemStack) Verdict {
	if err := d.Engine.ExecuteTrade(container, presented); err != nil {
		return deny(codeFor(err), d.messageFor(err))
	}
	return deferred(d.cfg.InfoMessages.TradeSuccess)
}

// ItemMove rules on hopper-style transfers. Either end may be nil.
func (d *Dispatcher) ItemMove(src, dst *modelpkg.Location) Verdict {
	if d.Guard.BlocksAutomation(src, dst) {
		return deny(protocol.ErrBlocked, "")
	}
	return allow()
}

// BlockBreak rules on a player breaking loc and tears down the trading post
// when one of its blocks goes.
func (d *Dispatcher) BlockBreak(p *modelpkg.Player, loc modelpkg.Location) Verdict {
	if d.Guard.KeepBlock(loc, p) {
		return deny(protocol.ErrNoPermission, "")
	}
	if d.Registry.IsTradingBlock(loc) {
		if _, err := d.Engine.Destroy(loc); err != nil {
			d.log.Warn("trading post teardown incomplete", zap.String("at", loc.Ref()), zap.Error(err))
		}
	}
	return allow()
}

// EnvironmentDamage returns the blocks of an explosion or fire that may go.
func (d *Dispatcher) EnvironmentDamage(locs []modelpkg.Location) []modelpkg.Location {
	return d.Guard.FilterEnvironmental(locs)
}

func (d *Dispatcher) PistonMove(locs []modelpkg.Location) Verdict {
	if d.Guard.BlocksPistonMove(locs) {
		return deny(protocol.ErrBlocked, "")
	}
	return allow()
}

// BlockPlace stops a chest from merging into a trading chest.
func (d *Dispatcher) BlockPlace(p *modelpkg.Player, loc modelpkg.Location, material string) Verdict {
	if d.Guard.BlocksChestMerge(loc, material) {
		return deny(protocol.ErrBlocked, "")
	}
	return allow()
}

// PlayerJoin flushes the player's buffer and returns the resource pack URL
// to offer, if any.
func (d *Dispatcher) PlayerJoin(p *modelpkg.Player) string {
	d.Buffer.FlushOnReachable(p.ID)
	if !d.cfg.Coin.UseResourcePack {
		return ""
	}
	return d.cfg.Coin.ResourcePackURL
}

func (d *Dispatcher) ItemConsume(p *modelpkg.Player, item *modelpkg.ItemStack) Verdict {
	switch d.Minter.Consume(item) {
	case coin.ConsumeBlockedReal:
		return deny(protocol.ErrBlocked, d.cfg.CoinMessages.RealCoin)
	case coin.ConsumeBlockedFake:
		return deny(protocol.ErrBlocked, d.cfg.CoinMessages.FakeCoin)
	case coin.ConsumeBlocked:
		return deny(protocol.ErrBlocked, "")
	}
	return allow()
}

func (d *Dispatcher) FurnaceSmelt(source *modelpkg.ItemStack) Verdict {
	if !d.Minter.SmeltAllowed(source) {
		return deny(protocol.ErrBlocked, "")
	}
	return allow()
}

// PlaceHead stops head coins from being placed, except on a trading sign
// where the click adjusts the price.
func (d *Dispatcher) PlaceHead(p *modelpkg.Player, clicked modelpkg.Location, held *modelpkg.ItemStack) Verdict {
	if !coin.PlacementBlocked(held) || d.Registry.Classify(clicked) == station.Trading {
		return allow()
	}
	return deny(protocol.ErrBlocked, "")
}

// Craft matches a crafting grid against the coin recipe. A match hands out
// freshly minted coins; any other grid is left to the host.
func (d *Dispatcher) Craft(p *modelpkg.Player, grid [3][3]string) Verdict {
	out := d.Minter.Craft(grid)
	if out == nil {
		return allow()
	}
	d.log.Debug("coins crafted", zap.String("player", p.ID.String()), zap.Int("amount", out.Amount))
	return Verdict{Kind: Allow, Result: out}
}

// Command runs a player command. Only "coins" exists.
func (d *Dispatcher) Command(p *modelpkg.Player, name string) Verdict {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/")) {
	case "coins":
		return allowWith(fmt.Sprintf(d.cfg.CommandMessage.Coins, d.Buffer.BalanceOf(p.ID)))
	}
	return deny(protocol.ErrBadRequest, "")
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, trading.ErrNotTradingBlock), errors.Is(err, trading.ErrNoContainer), errors.Is(err, vault.ErrNoContainer):
		return protocol.ErrInvalidTarget
	case errors.Is(err, trading.ErrPaymentNotCurrency):
		return protocol.ErrNotCurrency
	case errors.Is(err, trading.ErrCurrencyNotTradable), errors.Is(err, trading.ErrItemNotTradable):
		return protocol.ErrBadRequest
	case errors.Is(err, trading.ErrReserveOccupied), errors.Is(err, trading.ErrAlreadyStation),
		errors.Is(err, vault.ErrDuplicateVault), errors.Is(err, vault.ErrStationTaken):
		return protocol.ErrConflict
	case errors.Is(err, trading.ErrSignUnreadable):
		return protocol.ErrSignUnreadable
	}
	return protocol.ErrInternal
}

func (d *Dispatcher) messageFor(err error) string {
	m := d.cfg.ErrorMessages
	switch {
	case errors.Is(err, trading.ErrPaymentNotCurrency):
		return m.NotCoinDuringPay
	case errors.Is(err, trading.ErrNotTradingBlock):
		return m.NotTradingBlock
	case errors.Is(err, trading.ErrSignUnreadable):
		return m.SignUnreadable
	}
	return m.InvalidTradeChest
}
