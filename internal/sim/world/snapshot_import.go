package world

import (
	"fmt"
	"maps"

	"realcoins/internal/persistence/snapshot"
	"realcoins/internal/sim/world/kernel/grid"
	modelpkg "realcoins/internal/sim/world/kernel/model"
)

// ImportSnapshot replaces the in-memory world state with the snapshot and
// sets the tick to snapshotTick+1. Players come back offline.
//
// This must be called only when the world is stopped or from the world loop goroutine.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version %d", s.Header.Version)
	}
	if s.Header.WorldID != w.cfg.ID {
		return fmt.Errorf("snapshot belongs to world %q, not %q", s.Header.WorldID, w.cfg.ID)
	}

	g := grid.New()
	for _, bv := range s.Blocks {
		face, ok := modelpkg.ParseFace(bv.Facing)
		if !ok && bv.Facing != "" {
			return fmt.Errorf("block %v: bad facing %q", bv.Pos, bv.Facing)
		}
		b := &modelpkg.Block{Material: bv.Material, Facing: face}
		if bv.Sign != nil {
			b.Sign = &modelpkg.Sign{Lines: bv.Sign.Lines, Glowing: bv.Sign.Glowing}
		}
		if bv.Size > 0 {
			inv, err := inventoryFromV1(bv.Size, bv.Slots)
			if err != nil {
				return fmt.Errorf("block %v: %w", bv.Pos, err)
			}
			b.Inventory = inv
		}
		g.Set(modelpkg.Location{World: bv.World, Pos: vec(bv.Pos)}, b)
	}
	for _, d := range s.Drops {
		g.Drop(modelpkg.Location{World: d.World, Pos: vec(d.Pos)}, itemFromV1(d.Item))
	}

	players := map[modelpkg.PlayerID]*modelpkg.Player{}
	for _, pv := range s.Players {
		id, err := modelpkg.ParsePlayerID(pv.ID)
		if err != nil {
			return fmt.Errorf("player %q: %w", pv.ID, err)
		}
		inv, err := inventoryFromV1(pv.Size, pv.Slots)
		if err != nil {
			return fmt.Errorf("player %q: %w", pv.ID, err)
		}
		players[id] = &modelpkg.Player{
			ID:        id,
			Name:      pv.Name,
			Op:        pv.Op,
			GameMode:  modelpkg.GameMode(pv.GameMode),
			Inventory: inv,
		}
	}

	if w.mem != nil {
		w.mem.Clear()
		for _, t := range s.Tags {
			w.mem.Load(t.Ref, t.Keys)
		}
	}

	w.grid = g
	w.players = players
	w.clients = map[modelpkg.PlayerID]chan []byte{}
	w.tick.Store(s.Header.Tick + 1)
	return nil
}

func inventoryFromV1(size int, slots []snapshot.SlotV1) (*modelpkg.Inventory, error) {
	inv := modelpkg.NewInventory(size)
	for _, sv := range slots {
		if sv.Slot < 0 || sv.Slot >= size {
			return nil, fmt.Errorf("slot %d out of range", sv.Slot)
		}
		inv.Set(sv.Slot, itemFromV1(sv.Item))
	}
	return inv, nil
}

func itemFromV1(v snapshot.ItemV1) *modelpkg.ItemStack {
	return &modelpkg.ItemStack{
		Material:    v.Material,
		Amount:      v.Amount,
		DisplayName: v.Name,
		Texture:     v.Texture,
		Tags:        maps.Clone(v.Tags),
	}
}
