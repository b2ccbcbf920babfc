package trading

import (
	"go.uber.org/zap"

	"realcoins/internal/sim/world/feature/coin"
	"realcoins/internal/sim/world/feature/station"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/tags"
)

var postKeys = []string{
	tags.TradeSign,
	tags.TradeAmount,
	tags.TradeMaterial,
	tags.TradeOwner,
	tags.TradePrice,
	tags.TradePieces,
}

// Destroy tears down the post at loc (sign or container). Remaining stock is
// dropped above the sign in stack-sized batches and the display item is
// cleared. It returns the number of pieces ejected.
func (e *Engine) Destroy(loc modelpkg.Location) (int, error) {
	sign, ok := e.reg.SignOf(loc, station.Trading)
	if !ok {
		return 0, ErrNotTradingBlock
	}
	p, err := e.Post(sign)
	if err != nil {
		if container, ok := e.reg.SupportOf(sign); ok {
			e.clearDisplay(container)
		}
		e.clearTags(sign)
		return 0, err
	}
	spawn := e.reg.NextAirAbove(p.Sign)
	max := p.Template.MaxStackSize()
	ejected := 0
	for left := p.Stock; left > 0; {
		s := p.Template.Clone()
		s.Amount = min(max, left)
		e.env.Drop(spawn, s)
		left -= s.Amount
		ejected += s.Amount
	}
	e.clearDisplay(p.Container)
	e.clearTags(p.Sign)
	e.log.Info("trading post destroyed", zap.String("sign", p.Sign.Ref()), zap.Int("ejected", ejected))
	return ejected, nil
}

func (e *Engine) clearDisplay(container modelpkg.Location) {
	b := e.env.Block(container)
	if b == nil || b.Inventory == nil {
		return
	}
	if coin.IsDisplay(b.Inventory.Get(DisplaySlot)) {
		b.Inventory.Set(DisplaySlot, nil)
	}
}

func (e *Engine) clearTags(sign modelpkg.Location) {
	obj := e.tags.Object(sign.Ref())
	for _, k := range postKeys {
		obj.Delete(k)
	}
}
