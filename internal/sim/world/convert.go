package world

import (
	"maps"

	"realcoins/internal/protocol"
	modelpkg "realcoins/internal/sim/world/kernel/model"
)

func itemFromDTO(d *protocol.ItemDTO) *modelpkg.ItemStack {
	if d == nil {
		return nil
	}
	s := &modelpkg.ItemStack{
		Material:    modelpkg.NormalizeMaterial(d.Material),
		Amount:      d.Amount,
		DisplayName: d.Name,
		Texture:     d.Texture,
		Tags:        maps.Clone(d.Tags),
	}
	if s.IsEmpty() {
		return nil
	}
	return s
}

func itemToDTO(s *modelpkg.ItemStack) *protocol.ItemDTO {
	if s.IsEmpty() {
		return nil
	}
	return &protocol.ItemDTO{
		Material: s.Material,
		Amount:   s.Amount,
		Name:     s.DisplayName,
		Texture:  s.Texture,
		Tags:     maps.Clone(s.Tags),
	}
}

func craftGrid(rows [][]string) ([3][3]string, bool) {
	var g [3][3]string
	if len(rows) != 3 {
		return g, false
	}
	for i, row := range rows {
		if len(row) != 3 {
			return g, false
		}
		for j, m := range row {
			g[i][j] = modelpkg.NormalizeMaterial(m)
		}
	}
	return g, true
}

func vec(p [3]int) modelpkg.Vec3i { return modelpkg.Vec3i{X: p[0], Y: p[1], Z: p[2]} }

func (w *World) at(worldName string, p [3]int) modelpkg.Location {
	if worldName == "" {
		worldName = w.cfg.ID
	}
	return modelpkg.Location{World: worldName, Pos: vec(p)}
}

func (w *World) optAt(worldName string, p *[3]int) *modelpkg.Location {
	if p == nil {
		return nil
	}
	loc := w.at(worldName, *p)
	return &loc
}
