package world

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"realcoins/internal/persistence/snapshot"
	"realcoins/internal/protocol"
	"realcoins/internal/sim/tuning"
	"realcoins/internal/sim/world/feature/coin"
	"realcoins/internal/sim/world/feature/dispatch"
	"realcoins/internal/sim/world/feature/guard"
	"realcoins/internal/sim/world/feature/station"
	"realcoins/internal/sim/world/feature/trading"
	"realcoins/internal/sim/world/feature/vault"
	"realcoins/internal/sim/world/kernel/grid"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/sched"
	"realcoins/internal/sim/world/kernel/tags"
)

type Config struct {
	ID                 string
	TickRateHz         int
	SnapshotEveryTicks int
}

// Options wires optional collaborators. A nil Tags keeps tags in memory and
// carries them in snapshots; a database-backed store is its own record.
type Options struct {
	Tags   tags.Store
	Logger *zap.Logger
}

type JoinRequest struct {
	Hello protocol.HelloMsg
	Out   chan []byte
	Resp  chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Code    string
	Err     string
}

// InteractEnvelope is one INTERACT from a connected player. The RESULT is
// written to the player's outbound channel.
type InteractEnvelope struct {
	PlayerID modelpkg.PlayerID
	Msg      protocol.InteractMsg
}

// World is a single-threaded authoritative economy host.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg  Config
	tune tuning.Config
	log  *zap.Logger

	tick atomic.Uint64

	grid    *grid.Grid
	players map[modelpkg.PlayerID]*modelpkg.Player
	clients map[modelpkg.PlayerID]chan []byte

	store tags.Store
	// mem is set when tags live in memory and must ride along in snapshots.
	mem   *tags.Memory
	queue *sched.Queue

	reg    *station.Registry
	engine *trading.Engine
	buffer *vault.Buffer
	guard  *guard.Guard
	disp   *dispatch.Dispatcher

	inbox chan InteractEnvelope
	join  chan JoinRequest
	leave chan modelpkg.PlayerID
	admin chan adminSnapshotReq
	do    chan func()
	stop  chan struct{}

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1
}

func New(cfg Config, tune tuning.Config, opts Options) (*World, error) {
	if cfg.ID == "" {
		return nil, errors.New("world: empty id")
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = tune.Runtime.TickRateHz
	}
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("world: bad tick rate %d", cfg.TickRateHz)
	}
	if cfg.SnapshotEveryTicks == 0 {
		cfg.SnapshotEveryTicks = tune.Runtime.SnapshotEveryTicks
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("world", cfg.ID))

	w := &World{
		cfg:     cfg,
		tune:    tune,
		log:     log,
		grid:    grid.New(),
		players: map[modelpkg.PlayerID]*modelpkg.Player{},
		clients: map[modelpkg.PlayerID]chan []byte{},
		store:   opts.Tags,
		queue:   sched.NewQueue(),
		inbox:   make(chan InteractEnvelope, 1024),
		join:    make(chan JoinRequest, 64),
		leave:   make(chan modelpkg.PlayerID, 64),
		admin:   make(chan adminSnapshotReq, 16),
		do:      make(chan func(), 64),
		stop:    make(chan struct{}),
	}
	if w.store == nil {
		w.mem = tags.NewMemory()
		w.store = w.mem
	}

	minter, err := coin.NewMinter(tune.Coin, log)
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	w.reg = station.NewRegistry(w, w.store)
	w.buffer = vault.NewBuffer(w, w.reg, w.store, minter, log)
	w.engine = trading.NewEngine(w, w.reg, w.store, w.queue, payouts{w}, log)
	w.guard = guard.New(w, w.reg, w.store)
	w.disp = dispatch.New(w, dispatch.Services{
		Registry: w.reg,
		Engine:   w.engine,
		Buffer:   w.buffer,
		Guard:    w.guard,
		Minter:   minter,
	}, tune, log)
	return w, nil
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Inbox() chan<- InteractEnvelope  { return w.inbox }
func (w *World) Join() chan<- JoinRequest        { return w.join }
func (w *World) Leave() chan<- modelpkg.PlayerID { return w.leave }

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

// Block, Drop, BreakNaturally and Player make the world the environment of
// every economy feature.

func (w *World) Block(loc modelpkg.Location) *modelpkg.Block { return w.grid.Block(loc) }

func (w *World) Drop(loc modelpkg.Location, s *modelpkg.ItemStack) { w.grid.Drop(loc, s) }

// BreakNaturally removes the block at loc with its drops. Whatever the block
// carried in the tag store goes with it.
func (w *World) BreakNaturally(loc modelpkg.Location) {
	w.grid.BreakNaturally(loc)
	w.clearTags(loc)
}

func (w *World) Player(id modelpkg.PlayerID) *modelpkg.Player { return w.players[id] }

func (w *World) clearTags(loc modelpkg.Location) {
	obj := w.store.Object(loc.Ref())
	for _, k := range obj.Keys() {
		obj.Delete(k)
	}
}

// payouts credits sellers and tells online ones what is waiting for them.
type payouts struct{ w *World }

func (p payouts) Credit(id modelpkg.PlayerID, amount int) {
	p.w.buffer.Credit(id, amount)
	if bal := p.w.buffer.BalanceOf(id); bal > 0 {
		p.w.notify(id, fmt.Sprintf(p.w.tune.CommandMessage.Coins, bal))
	}
}
