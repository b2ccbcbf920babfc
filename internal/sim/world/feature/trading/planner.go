package trading

// Transaction is one planned exchange: Price coins for Amount pieces.
type Transaction struct {
	Price  int
	Amount int
}

// Plan returns the trades a buyer with funds coins can make against maxStock
// pieces sold in lots of lotSize for unitPrice each. A zero price or lot
// means the post is not for sale.
func Plan(maxStock, unitPrice, lotSize, funds int) []Transaction {
	if unitPrice <= 0 || lotSize <= 0 {
		return nil
	}
	var out []Transaction
	for maxStock > 0 && maxStock >= lotSize && funds >= unitPrice {
		out = append(out, Transaction{Price: unitPrice, Amount: lotSize})
		maxStock -= lotSize
		funds -= unitPrice
	}
	return out
}
