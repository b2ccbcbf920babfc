package world

import (
	"bytes"
	"maps"
	"sort"

	"realcoins/internal/persistence/snapshot"
	modelpkg "realcoins/internal/sim/world/kernel/model"
)

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	s := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    nowTick,
		},
		TickRate:           w.cfg.TickRateHz,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
	}

	for _, loc := range w.grid.Locations() {
		b := w.grid.Block(loc)
		bv := snapshot.BlockV1{
			World:    loc.World,
			Pos:      loc.Pos.ToArray(),
			Material: b.Material,
			Facing:   b.Facing.String(),
		}
		if b.Sign != nil {
			bv.Sign = &snapshot.SignV1{Lines: b.Sign.Lines, Glowing: b.Sign.Glowing}
		}
		if b.Inventory != nil {
			bv.Size = b.Inventory.Size()
			bv.Slots = slotsV1(b.Inventory)
		}
		s.Blocks = append(s.Blocks, bv)
	}

	ids := make([]modelpkg.PlayerID, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	for _, id := range ids {
		p := w.players[id]
		pv := snapshot.PlayerV1{
			ID:       id.String(),
			Name:     p.Name,
			Op:       p.Op,
			GameMode: string(p.GameMode),
		}
		if p.Inventory != nil {
			pv.Size = p.Inventory.Size()
			pv.Slots = slotsV1(p.Inventory)
		}
		s.Players = append(s.Players, pv)
	}

	for _, d := range w.grid.Drops() {
		s.Drops = append(s.Drops, snapshot.DropV1{World: d.At.World, Pos: d.At.Pos.ToArray(), Item: itemV1(d.Item)})
	}

	if w.mem != nil {
		for _, ref := range w.mem.Refs() {
			obj := w.mem.Object(ref)
			kv := map[string]string{}
			for _, k := range obj.Keys() {
				kv[k], _ = obj.Get(k)
			}
			s.Tags = append(s.Tags, snapshot.TagsV1{Ref: ref, Keys: kv})
		}
	}
	return s
}

func slotsV1(inv *modelpkg.Inventory) []snapshot.SlotV1 {
	var out []snapshot.SlotV1
	for i := 0; i < inv.Size(); i++ {
		if it := inv.Get(i); it != nil {
			out = append(out, snapshot.SlotV1{Slot: i, Item: itemV1(it)})
		}
	}
	return out
}

func itemV1(s *modelpkg.ItemStack) snapshot.ItemV1 {
	return snapshot.ItemV1{
		Material: s.Material,
		Amount:   s.Amount,
		Name:     s.DisplayName,
		Texture:  s.Texture,
		Tags:     maps.Clone(s.Tags),
	}
}
