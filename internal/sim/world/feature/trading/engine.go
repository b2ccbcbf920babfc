// Package trading runs trading posts: a wall sign on a container that sells
// one item for coins.
package trading

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"realcoins/internal/sim/world/feature/coin"
	"realcoins/internal/sim/world/feature/station"
	"realcoins/internal/sim/world/io/itemcodec"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/sched"
	"realcoins/internal/sim/world/kernel/tags"
)

var (
	ErrNotTradingBlock     = errors.New("trading: not a trading block")
	ErrSignUnreadable      = errors.New("trading: sign unreadable")
	ErrCurrencyNotTradable = errors.New("trading: currency can not be sold")
	ErrItemNotTradable     = errors.New("trading: item can not be sold")
	ErrReserveOccupied     = errors.New("trading: display slot occupied")
	ErrNoContainer         = errors.New("trading: sign is not attached to a container")
	ErrAlreadyStation      = errors.New("trading: container already has a station sign")
	ErrPaymentNotCurrency  = errors.New("trading: payment is not currency")
)

// DisplaySlot is the container slot holding the display item.
const DisplaySlot = 0

// Env is the block access and item spawning the engine needs from the world.
type Env interface {
	Block(loc modelpkg.Location) *modelpkg.Block
	Drop(loc modelpkg.Location, s *modelpkg.ItemStack)
}

// Scheduler queues work for the next tick, ordered per key.
type Scheduler interface {
	Enqueue(key string, fn sched.Task)
}

// Crediter receives the coins paid to a post owner.
type Crediter interface {
	Credit(player modelpkg.PlayerID, amount int)
}

// Engine creates, trades on and tears down trading posts.
type Engine struct {
	env     Env
	reg     *station.Registry
	tags    tags.Store
	queue   Scheduler
	payouts Crediter
	log     *zap.Logger
}

func NewEngine(env Env, reg *station.Registry, store tags.Store, queue Scheduler, payouts Crediter, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{env: env, reg: reg, tags: store, queue: queue, payouts: payouts, log: log}
}

// Post is the decoded state of one trading post.
type Post struct {
	Sign      modelpkg.Location
	Container modelpkg.Location
	Owner     modelpkg.PlayerID
	Template  *modelpkg.ItemStack
	Price     int
	Lot       int
	Stock     int
}

// Create turns sign into a trading post selling offered. Every check runs
// before the first write, so a refused creation leaves nothing behind.
func (e *Engine) Create(sign modelpkg.Location, owner *modelpkg.Player, offered *modelpkg.ItemStack) error {
	if offered.IsEmpty() || coin.IsDisplay(offered) {
		return ErrItemNotTradable
	}
	if coin.IsCurrency(offered) {
		return ErrCurrencyNotTradable
	}
	sb := e.env.Block(sign)
	if sb == nil || sb.Sign == nil || !modelpkg.IsWallSign(sb.Material) {
		return ErrNoContainer
	}
	if e.reg.Classify(sign) != station.None {
		return ErrAlreadyStation
	}
	container, ok := e.reg.SupportOf(sign)
	if !ok || !e.reg.IsInventoryBlock(container) {
		return ErrNoContainer
	}
	if _, taken := e.reg.FindAdjacentStation(container, station.Trading); taken {
		return ErrAlreadyStation
	}
	if e.reg.IsVaultContainer(container) {
		return ErrAlreadyStation
	}
	inv := e.env.Block(container).Inventory
	if inv.Get(DisplaySlot) != nil {
		return ErrReserveOccupied
	}
	blob, err := itemcodec.EncodeItem(offered)
	if err != nil {
		return fmt.Errorf("trading: encode template: %w", err)
	}

	display := offered.Clone()
	display.Amount = 1
	coin.MarkDisplay(display)
	inv.Set(DisplaySlot, display)

	obj := e.tags.Object(sign.Ref())
	tags.SetInt(obj, tags.TradeSign, 1)
	tags.SetInt(obj, tags.TradeAmount, 0)
	obj.Set(tags.TradeMaterial, blob)
	obj.Set(tags.TradeOwner, owner.ID.String())
	tags.SetInt(obj, tags.TradePrice, 0)
	tags.SetInt(obj, tags.TradePieces, offered.Amount)

	sb.Sign.Lines[0] = OwnerLine(owner.Name)
	sb.Sign.Lines[1] = offered.Name()
	sb.Sign.Glowing = true
	e.RefreshLabel(sign)

	e.log.Info("trading post created",
		zap.String("sign", sign.Ref()),
		zap.String("owner", owner.ID.String()),
		zap.String("material", offered.Material),
		zap.Int("lot", offered.Amount),
	)
	return nil
}

// Post resolves loc (the sign or its container) and decodes the post.
func (e *Engine) Post(loc modelpkg.Location) (Post, error) {
	sign, ok := e.reg.SignOf(loc, station.Trading)
	if !ok {
		return Post{}, ErrNotTradingBlock
	}
	p := Post{Sign: sign}
	if p.Container, ok = e.reg.SupportOf(sign); !ok {
		return Post{}, ErrNotTradingBlock
	}
	obj := e.tags.Object(sign.Ref())
	ownerRaw, _ := obj.Get(tags.TradeOwner)
	owner, err := uuid.Parse(ownerRaw)
	if err != nil {
		return Post{}, fmt.Errorf("%w: owner: %v", ErrSignUnreadable, err)
	}
	p.Owner = owner
	blob, _ := obj.Get(tags.TradeMaterial)
	if p.Template, err = itemcodec.DecodeItem(blob); err != nil {
		return Post{}, fmt.Errorf("%w: template: %v", ErrSignUnreadable, err)
	}
	var okPrice, okLot, okStock bool
	p.Price, okPrice = tags.Int(obj, tags.TradePrice)
	p.Lot, okLot = tags.Int(obj, tags.TradePieces)
	p.Stock, okStock = tags.Int(obj, tags.TradeAmount)
	if !okPrice || !okLot || !okStock {
		return Post{}, fmt.Errorf("%w: counters", ErrSignUnreadable)
	}
	return p, nil
}

// Owner is the owner of the post at loc, if loc is part of a readable post.
func (e *Engine) Owner(loc modelpkg.Location) (modelpkg.PlayerID, bool) {
	sign, ok := e.reg.SignOf(loc, station.Trading)
	if !ok {
		return modelpkg.PlayerID{}, false
	}
	raw, _ := e.tags.Object(sign.Ref()).Get(tags.TradeOwner)
	id, err := uuid.Parse(raw)
	if err != nil {
		return modelpkg.PlayerID{}, false
	}
	return id, true
}

// Template is the item sold at loc.
func (e *Engine) Template(loc modelpkg.Location) (*modelpkg.ItemStack, error) {
	p, err := e.Post(loc)
	if err != nil {
		return nil, err
	}
	return p.Template, nil
}

// ChangePrice applies a click with presented on the sign. Coins move the
// price, the sold item moves the lot size; anything else is ignored.
// Both counters stop at zero.
func (e *Engine) ChangePrice(sign modelpkg.Location, presented *modelpkg.ItemStack, delta int) (bool, error) {
	p, err := e.Post(sign)
	if err != nil {
		return false, err
	}
	var key string
	switch {
	case coin.IsCurrency(presented):
		key = tags.TradePrice
	case p.Template.IsSimilar(presented):
		key = tags.TradePieces
	default:
		return false, nil
	}
	next := tags.AddInt(e.tags.Object(p.Sign.Ref()), key, delta)
	e.RefreshLabel(p.Sign)
	e.log.Debug("trading post adjusted", zap.String("sign", p.Sign.Ref()), zap.String("key", key), zap.Int("value", next))
	return true, nil
}

// RefreshLabel rewrites the price and stock lines from the stored counters.
func (e *Engine) RefreshLabel(sign modelpkg.Location) {
	b := e.env.Block(sign)
	if b == nil || b.Sign == nil {
		return
	}
	obj := e.tags.Object(sign.Ref())
	lot, _ := tags.Int(obj, tags.TradePieces)
	price, _ := tags.Int(obj, tags.TradePrice)
	stock, _ := tags.Int(obj, tags.TradeAmount)
	b.Sign.Lines[2] = PriceLine(lot, price, stock)
	b.Sign.Lines[3] = StockLine(stock)
}
