package coin

import modelpkg "realcoins/internal/sim/world/kernel/model"

type ShapedRecipe struct {
	ID          string
	Shape       [3]string
	Ingredients map[rune]string
	Result      *modelpkg.ItemStack
}

type SmeltRecipe struct {
	ID        string
	Input     string
	Result    *modelpkg.ItemStack
	Exp       int
	CookTicks int
}

// Recipes returns the crafting recipe (3 coins) and the smelt-back recipe
// (3 gold ingots) for the host to register.
func (m *Minter) Recipes() (ShapedRecipe, SmeltRecipe) {
	craft := ShapedRecipe{
		ID:    "coin_easy",
		Shape: [3]string{"*E*", "ABA", "*A*"},
		Ingredients: map[rune]string{
			'A': modelpkg.GoldIngot,
			'B': modelpkg.Diamond,
			'E': modelpkg.Emerald,
		},
		Result: m.Mint(3),
	}
	smelt := SmeltRecipe{
		ID:        "coin_back",
		Input:     m.material,
		Result:    modelpkg.NewItem(modelpkg.GoldIngot, 3),
		Exp:       m.smeltExp,
		CookTicks: m.smeltTicks,
	}
	return craft, smelt
}

// Craft matches a 3x3 grid of materials ("" for empty) against the coin
// recipe and returns the result, or nil.
func (m *Minter) Craft(grid [3][3]string) *modelpkg.ItemStack {
	craft, _ := m.Recipes()
	for row := 0; row < 3; row++ {
		for col, key := range craft.Shape[row] {
			want := craft.Ingredients[key]
			if grid[row][col] != want {
				return nil
			}
		}
	}
	return craft.Result
}
