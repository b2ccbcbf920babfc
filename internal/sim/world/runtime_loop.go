package world

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"realcoins/internal/protocol"
	modelpkg "realcoins/internal/sim/world/kernel/model"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var pendingLeaves []modelpkg.PlayerID
	var pendingInteracts []InteractEnvelope
	var pendingAdmin []adminSnapshotReq

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingInteracts = append(pendingInteracts, env)
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case fn := <-w.do:
			fn()
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingInteracts)
			w.handleAdminSnapshotRequests(pendingAdmin)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingInteracts = pendingInteracts[:0]
			pendingAdmin = pendingAdmin[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// step runs one tick: tasks deferred during the previous tick settle first,
// then joins, leaves and interactions apply in arrival order.
func (w *World) step(joins []JoinRequest, leaves []modelpkg.PlayerID, interacts []InteractEnvelope) []protocol.ResultMsg {
	nowTick := w.tick.Load()

	if keys := w.queue.Drain(); len(keys) > 0 {
		w.log.Debug("deferred tasks settled", zap.Uint64("tick", nowTick), zap.Strings("keys", keys))
	}
	for _, req := range joins {
		w.handleJoin(req)
	}
	for _, id := range leaves {
		w.handleLeave(id)
	}
	results := make([]protocol.ResultMsg, 0, len(interacts))
	for _, env := range interacts {
		res := w.handleInteract(env)
		w.send(env.PlayerID, res)
		results = append(results, res)
	}

	if every := w.cfg.SnapshotEveryTicks; every > 0 && nowTick > 0 && nowTick%uint64(every) == 0 {
		if err := w.emitSnapshot(nowTick); err != nil {
			w.log.Warn("periodic snapshot skipped", zap.Uint64("tick", nowTick), zap.Error(err))
		}
	}
	w.tick.Add(1)
	return results
}

// StepOnce advances the world by a single tick using the same ordering
// semantics as the server. It is meant for tests and tools.
func (w *World) StepOnce(joins []JoinRequest, leaves []modelpkg.PlayerID, interacts []InteractEnvelope) (tick uint64, results []protocol.ResultMsg) {
	tick = w.tick.Load()
	return tick, w.step(joins, leaves, interacts)
}

// Do runs fn on the world goroutine and waits for it.
// It is safe to call from other goroutines (e.g. HTTP handlers).
func (w *World) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case w.do <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Balance reads a player's buffered coins from outside the world loop.
func (w *World) Balance(ctx context.Context, id modelpkg.PlayerID) (int, error) {
	var bal int
	err := w.Do(ctx, func() { bal = w.buffer.BalanceOf(id) })
	return bal, err
}

func (w *World) handleJoin(req JoinRequest) {
	resp := JoinResponse{}
	defer func() {
		if req.Resp != nil {
			req.Resp <- resp
		}
	}()

	id, err := modelpkg.ParsePlayerID(req.Hello.PlayerID)
	if err != nil {
		resp.Code, resp.Err = protocol.ErrBadRequest, "bad player_id"
		return
	}
	mode := modelpkg.GameMode(req.Hello.GameMode)
	if mode != modelpkg.Creative {
		mode = modelpkg.Survival
	}
	p := w.players[id]
	if p == nil {
		p = &modelpkg.Player{ID: id, Inventory: modelpkg.NewInventory(36)}
		w.players[id] = p
	}
	p.Name = req.Hello.PlayerName
	p.Op = req.Hello.Op
	p.GameMode = mode
	p.Online = true
	if req.Out != nil {
		w.clients[id] = req.Out
	}

	url := w.disp.PlayerJoin(p)
	resp.Welcome = protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        id.String(),
		Balance:         w.buffer.BalanceOf(id),
		ResourcePackURL: url,
		TickRateHz:      w.cfg.TickRateHz,
	}
	w.log.Info("player joined", zap.String("player", id.String()), zap.String("name", p.Name), zap.Int("balance", resp.Welcome.Balance))
}

func (w *World) handleLeave(id modelpkg.PlayerID) {
	if p := w.players[id]; p != nil {
		p.Online = false
	}
	delete(w.clients, id)
}

func (w *World) send(id modelpkg.PlayerID, msg any) {
	ch := w.clients[id]
	if ch == nil {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		w.log.Error("encode outbound message", zap.Error(err))
		return
	}
	sendLatest(ch, b)
}

func (w *World) notify(id modelpkg.PlayerID, text string) {
	if text == "" {
		return
	}
	w.send(id, protocol.NoticeMsg{Type: protocol.TypeNotice, ProtocolVersion: protocol.Version, Message: text})
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
