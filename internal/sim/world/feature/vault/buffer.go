// Package vault keeps the per-player coin buffer and delivers it into the
// player's vault containers.
package vault

import (
	"strings"

	"go.uber.org/zap"

	"realcoins/internal/sim/world/feature/coin"
	"realcoins/internal/sim/world/feature/station"
	"realcoins/internal/sim/world/io/itemcodec"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/tags"
)

const listSep = ";"

// Env is the world access the buffer needs.
type Env interface {
	Block(loc modelpkg.Location) *modelpkg.Block
	// Player returns nil for players the world has never seen.
	Player(id modelpkg.PlayerID) *modelpkg.Player
}

// Buffer holds coins owed to players until one of their vaults has room.
type Buffer struct {
	env    Env
	reg    *station.Registry
	tags   tags.Store
	minter *coin.Minter
	log    *zap.Logger
}

func NewBuffer(env Env, reg *station.Registry, store tags.Store, minter *coin.Minter, log *zap.Logger) *Buffer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Buffer{env: env, reg: reg, tags: store, minter: minter, log: log}
}

func (b *Buffer) player(id modelpkg.PlayerID) tags.Object {
	return b.tags.Object(modelpkg.PlayerRef(id))
}

// Credit hands amount coins to player: straight into the vaults when the
// player is online, into the buffer for whatever is left.
func (b *Buffer) Credit(player modelpkg.PlayerID, amount int) {
	if amount <= 0 {
		return
	}
	if p := b.env.Player(player); p != nil && p.Online {
		amount = b.DeliverToVaults(player, amount)
	}
	if amount == 0 {
		return
	}
	total := tags.AddInt(b.player(player), tags.PlayerBuffer, amount)
	b.log.Debug("coins buffered", zap.String("player", player.String()), zap.Int("amount", amount), zap.Int("balance", total))
}

func (b *Buffer) BalanceOf(player modelpkg.PlayerID) int {
	n, _ := tags.Int(b.player(player), tags.PlayerBuffer)
	return max(n, 0)
}

// FlushOnReachable empties the buffer through Credit, so anything still
// undeliverable lands back in the buffer. Calling it twice is harmless.
func (b *Buffer) FlushOnReachable(player modelpkg.PlayerID) {
	n := b.BalanceOf(player)
	if n == 0 {
		return
	}
	tags.SetInt(b.player(player), tags.PlayerBuffer, 0)
	b.Credit(player, n)
}

// DeliverToVaults fills the player's vaults in registration order and
// returns what did not fit. Entries that no longer resolve are pruned.
func (b *Buffer) DeliverToVaults(player modelpkg.PlayerID, amount int) int {
	for _, inv := range b.resolve(player) {
		if amount == 0 {
			break
		}
		amount = b.fill(inv, amount)
	}
	return amount
}

// VaultsOf lists the vault signs of player that still resolve.
func (b *Buffer) VaultsOf(player modelpkg.PlayerID) []modelpkg.Location {
	var out []modelpkg.Location
	for _, blob := range b.entries(player) {
		if loc, ok := b.check(player, blob); ok {
			out = append(out, loc)
		}
	}
	return out
}

func (b *Buffer) entries(player modelpkg.PlayerID) []string {
	raw, _ := b.player(player).Get(tags.PlayerVaults)
	var out []string
	for _, e := range strings.Split(raw, listSep) {
		if strings.TrimSpace(e) != "" {
			out = append(out, e)
		}
	}
	return out
}

func (b *Buffer) resolve(player modelpkg.PlayerID) []*modelpkg.Inventory {
	entries := b.entries(player)
	var (
		kept []string
		invs []*modelpkg.Inventory
	)
	for _, blob := range entries {
		loc, ok := b.check(player, blob)
		if !ok {
			continue
		}
		support, _ := b.reg.SupportOf(loc)
		kept = append(kept, blob)
		invs = append(invs, b.env.Block(support).Inventory)
	}
	if len(kept) != len(entries) {
		b.player(player).Set(tags.PlayerVaults, strings.Join(kept, listSep))
		b.log.Warn("vault list pruned",
			zap.String("player", player.String()),
			zap.Int("dropped", len(entries)-len(kept)),
		)
	}
	return invs
}

// check decodes one vault entry and confirms it is still a vault sign of
// player on an inventory block.
func (b *Buffer) check(player modelpkg.PlayerID, blob string) (modelpkg.Location, bool) {
	loc, err := itemcodec.DecodeLocation(blob)
	if err != nil {
		b.log.Warn("unreadable vault entry", zap.Error(err))
		return modelpkg.Location{}, false
	}
	if b.reg.Classify(loc) != station.Vault {
		return modelpkg.Location{}, false
	}
	if owner, _ := b.tags.Object(loc.Ref()).Get(tags.CoinSignOwner); owner != player.String() {
		return modelpkg.Location{}, false
	}
	support, ok := b.reg.SupportOf(loc)
	if !ok || !b.reg.IsInventoryBlock(support) {
		return modelpkg.Location{}, false
	}
	return loc, true
}

func (b *Buffer) fill(inv *modelpkg.Inventory, amount int) int {
	for _, stack := range b.minter.MintStacks(amount) {
		left := inv.Add(stack)
		amount -= stack.Amount - left
		if left > 0 {
			break
		}
	}
	return amount
}
