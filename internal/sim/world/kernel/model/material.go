package model

import "strings"

const (
	Air             = "AIR"
	Chest           = "CHEST"
	TrappedChest    = "TRAPPED_CHEST"
	Barrel          = "BARREL"
	ShulkerBox      = "SHULKER_BOX"
	Hopper          = "HOPPER"
	Dropper         = "DROPPER"
	Dispenser       = "DISPENSER"
	Furnace         = "FURNACE"
	PlayerHead      = "PLAYER_HEAD"
	PoisonousPotato = "POISONOUS_POTATO"
	GoldIngot       = "GOLD_INGOT"
	Diamond         = "DIAMOND"
	Emerald         = "EMERALD"
)

const DefaultMaxStack = 64

var containers = map[string]bool{
	Chest:        true,
	TrappedChest: true,
	Barrel:       true,
	ShulkerBox:   true,
	Hopper:       true,
	Dropper:      true,
	Dispenser:    true,
	Furnace:      true,
}

// Item-moving blocks never take part in trading or vault delivery.
var automation = map[string]bool{
	Hopper:    true,
	Dropper:   true,
	Dispenser: true,
}

var stackSizes = map[string]int{
	"OAK_SIGN":        16,
	"SPRUCE_SIGN":     16,
	"BIRCH_SIGN":      16,
	"ENDER_PEARL":     16,
	"EGG":             16,
	"SNOWBALL":        16,
	"DIAMOND_SWORD":   1,
	"IRON_SWORD":      1,
	"DIAMOND_PICKAXE": 1,
	"IRON_PICKAXE":    1,
	"BOW":             1,
	"SHEARS":          1,
}

var knownItems = map[string]bool{
	Air:             true,
	PlayerHead:      true,
	PoisonousPotato: true,
	GoldIngot:       true,
	Diamond:         true,
	Emerald:         true,
	"IRON_INGOT":    true,
	"GOLD_NUGGET":   true,
	"COBBLESTONE":   true,
	"STONE":         true,
	"DIRT":          true,
	"OAK_LOG":       true,
	"OAK_PLANKS":    true,
	"BREAD":         true,
	"APPLE":         true,
	"COAL":          true,
	"TORCH":         true,
}

func init() {
	for m := range containers {
		knownItems[m] = true
	}
	for m := range stackSizes {
		knownItems[m] = true
	}
	for _, wood := range []string{"OAK", "SPRUCE", "BIRCH"} {
		knownItems[wood+"_WALL_SIGN"] = true
	}
}

// IsKnownMaterial reports whether name (case-insensitive) is a material of this world.
func IsKnownMaterial(name string) bool {
	return knownItems[strings.ToUpper(strings.TrimSpace(name))]
}

func NormalizeMaterial(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func IsWallSign(material string) bool {
	return strings.HasSuffix(material, "_WALL_SIGN")
}

func IsSign(material string) bool {
	return strings.HasSuffix(material, "_SIGN")
}

func IsContainer(material string) bool { return containers[material] }

func IsAutomation(material string) bool { return automation[material] }

func IsChest(material string) bool { return material == Chest || material == TrappedChest }

func MaxStackSize(material string) int {
	if n, ok := stackSizes[material]; ok {
		return n
	}
	if strings.HasSuffix(material, "_SIGN") {
		return 16
	}
	return DefaultMaxStack
}
