package model

import "realcoins/internal/sim/world/logic/ids"

type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

// Face is a block face. Horizontal faces come first so that neighbor scans
// over HorizontalFaces are deterministic.
type Face int

const (
	North Face = iota
	East
	South
	West
	Up
	Down
)

// HorizontalFaces is the scan order used for wall sign lookups.
var HorizontalFaces = []Face{North, East, South, West}

func (f Face) Offset() Vec3i {
	switch f {
	case North:
		return Vec3i{Z: -1}
	case East:
		return Vec3i{X: 1}
	case South:
		return Vec3i{Z: 1}
	case West:
		return Vec3i{X: -1}
	case Up:
		return Vec3i{Y: 1}
	case Down:
		return Vec3i{Y: -1}
	}
	return Vec3i{}
}

func (f Face) Opposite() Face {
	switch f {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	}
	return f
}

func (f Face) String() string {
	switch f {
	case North:
		return "NORTH"
	case East:
		return "EAST"
	case South:
		return "SOUTH"
	case West:
		return "WEST"
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	}
	return "UNKNOWN"
}

func ParseFace(s string) (Face, bool) {
	for f := North; f <= Down; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return North, false
}

// Location addresses a block in a named world.
type Location struct {
	World string
	Pos   Vec3i
}

func (l Location) Relative(f Face) Location {
	return Location{World: l.World, Pos: l.Pos.Add(f.Offset())}
}

func (l Location) Up() Location { return l.Relative(Up) }

// Ref is the tag store key of the block at l.
func (l Location) Ref() string {
	return ids.BlockRef(l.World, l.Pos.X, l.Pos.Y, l.Pos.Z)
}

func (l Location) String() string { return l.Ref() }
