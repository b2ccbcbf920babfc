package trading

import "fmt"

const (
	colorRed   = "§4"
	colorGreen = "§2"
)

// OwnerLine is sign line 0.
func OwnerLine(name string) string {
	if name == "" {
		name = "ERROR"
	}
	return fmt.Sprintf("§0§l %s", name)
}

// PriceLine is sign line 2: "<lot> = <price> ¢". The lot turns red when the
// stock cannot cover one lot, the price when the post gives nothing away.
func PriceLine(lot, price, stock int) string {
	lotColor := colorGreen
	if stock < lot || lot == 0 {
		lotColor = colorRed
	}
	priceColor := colorGreen
	if price == 0 {
		priceColor = colorRed
	}
	return fmt.Sprintf("%s§l%d§0 = %s§l%d§0 ¢", lotColor, lot, priceColor, price)
}

// StockLine is sign line 3.
func StockLine(stock int) string {
	return fmt.Sprintf("stock: %d", stock)
}
