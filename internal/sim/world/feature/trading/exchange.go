package trading

import (
	"errors"

	"go.uber.org/zap"

	"realcoins/internal/sim/world/feature/coin"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/tags"
)

// ExecuteTrade validates a buy attempt on container and schedules the trade
// for the next drain. presented is the item the buyer moved; anything that
// is not currency refuses the attempt.
func (e *Engine) ExecuteTrade(container modelpkg.Location, presented *modelpkg.ItemStack) error {
	if _, err := e.Post(container); err != nil {
		return err
	}
	if !coin.IsCurrency(presented) {
		return ErrPaymentNotCurrency
	}
	e.queue.Enqueue(container.Ref(), func() { e.settle(container) })
	return nil
}

// Restock schedules the owner path: fold matching stacks into stock, or
// trade if nothing matched.
func (e *Engine) Restock(container modelpkg.Location) error {
	if _, err := e.Post(container); err != nil {
		return err
	}
	e.queue.Enqueue(container.Ref(), func() {
		if e.fold(container) == 0 {
			e.settle(container)
		}
	})
	return nil
}

// settle runs the planned trades against the live container. The post is
// resolved again since anything may have changed since scheduling.
func (e *Engine) settle(at modelpkg.Location) int {
	p, inv, ok := e.live(at)
	if !ok {
		return 0
	}
	obj := e.tags.Object(p.Sign.Ref())
	plan := Plan(p.Stock, p.Price, p.Lot, coin.Count(inv))
	for _, tx := range plan {
		e.takeCoins(inv, tx.Price, p.Owner)
		e.giveGoods(inv, p, tx.Amount)
		tags.AddInt(obj, tags.TradeAmount, -tx.Amount)
		e.RefreshLabel(p.Sign)
	}
	if len(plan) > 0 {
		e.log.Info("trade settled",
			zap.String("sign", p.Sign.Ref()),
			zap.String("owner", p.Owner.String()),
			zap.Int("trades", len(plan)),
			zap.Int("paid", len(plan)*p.Price),
		)
	}
	return len(plan)
}

// fold moves every plain stack of the sold item into the stock counter and
// returns the number of pieces taken.
func (e *Engine) fold(at modelpkg.Location) int {
	p, inv, ok := e.live(at)
	if !ok {
		return 0
	}
	obj := e.tags.Object(p.Sign.Ref())
	taken := 0
	for i, s := range inv.Slots {
		if s.IsEmpty() || coin.IsDisplay(s) || !s.IsSimilar(p.Template) {
			continue
		}
		tags.AddInt(obj, tags.TradeAmount, s.Amount)
		taken += s.Amount
		inv.Set(i, nil)
	}
	if taken > 0 {
		e.RefreshLabel(p.Sign)
		e.log.Info("trading post restocked", zap.String("sign", p.Sign.Ref()), zap.Int("pieces", taken))
	}
	return taken
}

func (e *Engine) live(at modelpkg.Location) (Post, *modelpkg.Inventory, bool) {
	p, err := e.Post(at)
	if err != nil {
		if !errors.Is(err, ErrNotTradingBlock) {
			e.log.Warn("deferred trade skipped", zap.String("at", at.Ref()), zap.Error(err))
		}
		return Post{}, nil, false
	}
	b := e.env.Block(p.Container)
	if b == nil || b.Inventory == nil {
		return Post{}, nil, false
	}
	return p, b.Inventory, true
}

// takeCoins removes price coins slot by slot and credits the owner for each
// slice taken.
func (e *Engine) takeCoins(inv *modelpkg.Inventory, price int, owner modelpkg.PlayerID) {
	for _, s := range inv.Slots {
		if price == 0 {
			break
		}
		if !coin.IsCurrency(s) {
			continue
		}
		n := min(s.Amount, price)
		s.Amount -= n
		price -= n
		e.payouts.Credit(owner, n)
	}
	inv.Compact()
}

// giveGoods adds pieces of the sold item to inv. What does not fit drops at
// the sign.
func (e *Engine) giveGoods(inv *modelpkg.Inventory, p Post, pieces int) {
	goods := p.Template.Clone()
	goods.Amount = pieces
	left := inv.Add(goods)
	max := goods.MaxStackSize()
	for left > 0 {
		s := p.Template.Clone()
		s.Amount = min(left, max)
		e.env.Drop(p.Sign, s)
		left -= s.Amount
	}
}
