package ids

import (
	"fmt"
	"strconv"
	"strings"
)

const playerPrefix = "player:"

// BlockRef is the tag store key of a block: WORLD@x,y,z.
func BlockRef(world string, x, y, z int) string {
	return fmt.Sprintf("%s@%d,%d,%d", world, x, y, z)
}

func ParseBlockRef(ref string) (world string, x, y, z int, ok bool) {
	parts := strings.SplitN(ref, "@", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, 0, 0, false
	}
	world = parts[0]
	coord := strings.Split(parts[1], ",")
	if len(coord) != 3 {
		return "", 0, 0, 0, false
	}
	x, err1 := strconv.Atoi(coord[0])
	y, err2 := strconv.Atoi(coord[1])
	z, err3 := strconv.Atoi(coord[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", 0, 0, 0, false
	}
	return world, x, y, z, true
}

func PlayerRef(id string) string {
	return playerPrefix + id
}

func ParsePlayerRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, playerPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(ref, playerPrefix)
	return id, id != ""
}
