package world

import (
	"go.uber.org/zap"

	"realcoins/internal/protocol"
	"realcoins/internal/sim/world/feature/coin"
	"realcoins/internal/sim/world/feature/dispatch"
	"realcoins/internal/sim/world/feature/trading"
	modelpkg "realcoins/internal/sim/world/kernel/model"
)

// defaultContainerSize is used when a BLOCK_PLACE for a container omits size.
const defaultContainerSize = 27

func result(ref string) protocol.ResultMsg {
	return protocol.ResultMsg{Type: protocol.TypeResult, ProtocolVersion: protocol.Version, Ref: ref}
}

func reject(ref, code, msg string) protocol.ResultMsg {
	r := result(ref)
	r.Verdict = protocol.VerdictDeny
	r.Code = code
	r.Message = msg
	return r
}

// handleInteract rules on one host event and applies the world side of an
// event that went through.
func (w *World) handleInteract(env InteractEnvelope) protocol.ResultMsg {
	ref := env.Msg.ID
	p := w.players[env.PlayerID]
	if p == nil || !p.Online {
		return reject(ref, protocol.ErrBadRequest, "player not joined")
	}
	ev := env.Msg.Event
	loc := w.at(ev.World, ev.Pos)
	res := result(ref)

	var v dispatch.Verdict
	switch ev.Kind {
	case protocol.EventSignInteract:
		var action dispatch.Action
		switch ev.Action {
		case protocol.ActionLeftClick:
			action = dispatch.LeftClick
		case protocol.ActionRightClick:
			action = dispatch.RightClick
		default:
			return reject(ref, protocol.ErrBadRequest, "bad action")
		}
		v = w.disp.SignInteract(p, loc, action, itemFromDTO(ev.Item))

	case protocol.EventSignChange:
		b := w.grid.Block(loc)
		if b == nil || b.Sign == nil {
			return reject(ref, protocol.ErrInvalidTarget, "no sign here")
		}
		for i := range b.Sign.Lines {
			b.Sign.Lines[i] = ""
			if i < len(ev.Lines) {
				b.Sign.Lines[i] = ev.Lines[i]
			}
		}
		v = w.disp.SignChange(p, loc, ev.Lines)

	case protocol.EventContainerClick:
		v = w.disp.ContainerClick(p, loc, dispatch.Click{
			TopClicked: ev.TopClicked,
			Shift:      ev.Shift,
			Current:    itemFromDTO(ev.Item),
			Cursor:     itemFromDTO(ev.Cursor),
		})
		if !v.Denied() {
			w.applyWrites(loc, ev.Writes)
		}

	case protocol.EventContainerDrag:
		v = w.disp.ContainerDrag(p, loc, itemFromDTO(ev.Cursor), ev.Slots, ev.TopSize)
		if !v.Denied() {
			w.applyWrites(loc, ev.Writes)
		}

	case protocol.EventItemMove:
		v = w.disp.ItemMove(w.optAt(ev.World, ev.Src), w.optAt(ev.World, ev.Dst))

	case protocol.EventBlockBreak:
		v = w.disp.BlockBreak(p, loc)
		if !v.Denied() {
			w.BreakNaturally(loc)
		}

	case protocol.EventEnvironmentDamage:
		locs := make([]modelpkg.Location, 0, len(ev.Blocks))
		for _, pos := range ev.Blocks {
			locs = append(locs, w.at(ev.World, pos))
		}
		doomed := map[modelpkg.Location]bool{}
		for _, l := range w.disp.EnvironmentDamage(locs) {
			doomed[l] = true
			w.BreakNaturally(l)
		}
		for _, l := range locs {
			if !doomed[l] {
				res.Survivors = append(res.Survivors, l.Pos.ToArray())
			}
		}
		v = dispatch.Verdict{Kind: dispatch.Allow}

	case protocol.EventPistonMove:
		locs := make([]modelpkg.Location, 0, len(ev.Blocks))
		for _, pos := range ev.Blocks {
			locs = append(locs, w.at(ev.World, pos))
		}
		v = w.disp.PistonMove(locs)

	case protocol.EventBlockPlace:
		material := modelpkg.NormalizeMaterial(ev.Material)
		if !modelpkg.IsKnownMaterial(material) {
			return reject(ref, protocol.ErrBadRequest, "unknown material")
		}
		if !w.grid.Block(loc).IsAir() {
			return reject(ref, protocol.ErrConflict, "position occupied")
		}
		v = w.disp.BlockPlace(p, loc, material)
		if !v.Denied() {
			if code, msg := w.place(loc, material, ev); code != "" {
				return reject(ref, code, msg)
			}
		}

	case protocol.EventItemConsume:
		v = w.disp.ItemConsume(p, itemFromDTO(ev.Item))

	case protocol.EventFurnaceSmelt:
		v = w.disp.FurnaceSmelt(itemFromDTO(ev.Item))

	case protocol.EventPlaceHead:
		v = w.disp.PlaceHead(p, loc, itemFromDTO(ev.Item))

	case protocol.EventCommand:
		v = w.disp.Command(p, ev.Command)

	case protocol.EventCraft:
		grid, ok := craftGrid(ev.Grid)
		if !ok {
			return reject(ref, protocol.ErrBadRequest, "grid must be 3x3")
		}
		v = w.disp.Craft(p, grid)
		res.Item = itemToDTO(v.Result)

	default:
		return reject(ref, protocol.ErrBadRequest, "unknown event kind")
	}

	res.Verdict = v.Kind.String()
	res.Code = v.Code
	res.Message = v.Message
	if v.Denied() {
		w.log.Debug("event denied",
			zap.String("player", p.ID.String()),
			zap.String("kind", ev.Kind),
			zap.String("at", loc.Ref()),
			zap.String("code", v.Code),
		)
	}
	return res
}

// place puts a block the host placed into the grid.
func (w *World) place(loc modelpkg.Location, material string, ev protocol.Event) (code, msg string) {
	switch {
	case modelpkg.IsWallSign(material):
		face, ok := modelpkg.ParseFace(ev.Facing)
		if !ok {
			return protocol.ErrBadRequest, "bad facing"
		}
		w.grid.Set(loc, &modelpkg.Block{Material: material, Facing: face, Sign: &modelpkg.Sign{}})
	case modelpkg.IsContainer(material):
		size := ev.Size
		if size <= 0 {
			size = defaultContainerSize
		}
		w.grid.PlaceContainer(loc, material, size)
	default:
		w.grid.Set(loc, &modelpkg.Block{Material: material})
	}
	return "", ""
}

// applyWrites copies the host's own handling of an allowed click into the
// container. The display slot of a trading container is never overwritten.
func (w *World) applyWrites(loc modelpkg.Location, writes []protocol.SlotWrite) {
	b := w.grid.Block(loc)
	if b == nil || b.Inventory == nil {
		return
	}
	inv := b.Inventory
	for _, wr := range writes {
		if wr.Slot < 0 || wr.Slot >= inv.Size() {
			continue
		}
		if wr.Slot == trading.DisplaySlot && coin.IsDisplay(inv.Get(wr.Slot)) {
			continue
		}
		inv.Set(wr.Slot, itemFromDTO(wr.Item))
	}
}
