package model

// Inventory is a fixed-size list of slots; nil means empty.
type Inventory struct {
	Slots []*ItemStack
}

func NewInventory(size int) *Inventory {
	if size < 0 {
		size = 0
	}
	return &Inventory{Slots: make([]*ItemStack, size)}
}

func (inv *Inventory) Size() int {
	if inv == nil {
		return 0
	}
	return len(inv.Slots)
}

func (inv *Inventory) Get(slot int) *ItemStack {
	if inv == nil || slot < 0 || slot >= len(inv.Slots) {
		return nil
	}
	s := inv.Slots[slot]
	if s.IsEmpty() {
		return nil
	}
	return s
}

func (inv *Inventory) Set(slot int, s *ItemStack) {
	if inv == nil || slot < 0 || slot >= len(inv.Slots) {
		return
	}
	if s.IsEmpty() {
		inv.Slots[slot] = nil
		return
	}
	inv.Slots[slot] = s
}

// Compact drops emptied stacks so that Get/Contents never see zero amounts.
func (inv *Inventory) Compact() {
	if inv == nil {
		return
	}
	for i, s := range inv.Slots {
		if s != nil && s.IsEmpty() {
			inv.Slots[i] = nil
		}
	}
}

// Contents returns the live (non-empty) stacks in slot order.
func (inv *Inventory) Contents() []*ItemStack {
	if inv == nil {
		return nil
	}
	out := make([]*ItemStack, 0, len(inv.Slots))
	for _, s := range inv.Slots {
		if !s.IsEmpty() {
			out = append(out, s)
		}
	}
	return out
}

// Add merges a copy of s into similar stacks first, then into empty slots,
// and returns the amount that did not fit.
func (inv *Inventory) Add(s *ItemStack) int {
	if s.IsEmpty() {
		return 0
	}
	if inv == nil {
		return s.Amount
	}
	left := s.Amount
	max := s.MaxStackSize()
	for _, cur := range inv.Slots {
		if left == 0 {
			return 0
		}
		if cur.IsEmpty() || !cur.IsSimilar(s) || cur.Amount >= max {
			continue
		}
		n := min(max-cur.Amount, left)
		cur.Amount += n
		left -= n
	}
	for i, cur := range inv.Slots {
		if left == 0 {
			return 0
		}
		if !cur.IsEmpty() {
			continue
		}
		n := min(max, left)
		c := s.Clone()
		c.Amount = n
		inv.Slots[i] = c
		left -= n
	}
	return left
}

// Capacity is how many items similar to s still fit.
func (inv *Inventory) Capacity(s *ItemStack) int {
	if inv == nil || s == nil {
		return 0
	}
	max := s.MaxStackSize()
	total := 0
	for _, cur := range inv.Slots {
		switch {
		case cur.IsEmpty():
			total += max
		case cur.IsSimilar(s) && cur.Amount < max:
			total += max - cur.Amount
		}
	}
	return total
}

func (inv *Inventory) Clone() *Inventory {
	if inv == nil {
		return nil
	}
	out := NewInventory(len(inv.Slots))
	for i, s := range inv.Slots {
		if !s.IsEmpty() {
			out.Slots[i] = s.Clone()
		}
	}
	return out
}
