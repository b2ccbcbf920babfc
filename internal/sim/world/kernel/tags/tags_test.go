package tags

import "testing"

func TestMemoryObjectRoundTrip(t *testing.T) {
	m := NewMemory()
	o := m.Object("overworld@1,2,3")
	if o.Has(TradeSign) {
		t.Fatalf("fresh object must be empty")
	}
	o.Set(TradeSign, "1")
	SetInt(o, TradePrice, 5)
	if !o.Has(TradeSign) {
		t.Fatalf("expected key after Set")
	}
	if got, ok := Int(o, TradePrice); !ok || got != 5 {
		t.Fatalf("price=%d ok=%v", got, ok)
	}
	keys := o.Keys()
	if len(keys) != 2 || keys[0] != TradeSign || keys[1] != TradePrice {
		t.Fatalf("unexpected keys: %v", keys)
	}
	o.Delete(TradeSign)
	o.Delete(TradePrice)
	if len(m.Refs()) != 0 {
		t.Fatalf("empty objects must not be listed: %v", m.Refs())
	}
}

func TestAddIntClampsAtZero(t *testing.T) {
	o := NewMemory().Object("p")
	SetInt(o, PlayerBuffer, 3)
	if got := AddInt(o, PlayerBuffer, -10); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	if got, _ := Int(o, PlayerBuffer); got != 0 {
		t.Fatalf("stored %d, want 0", got)
	}
	if got := AddInt(o, PlayerBuffer, 4); got != 4 {
		t.Fatalf("got %d, want 4", got)
	}
}

func TestIntRejectsMalformed(t *testing.T) {
	o := NewMemory().Object("p")
	o.Set(TradePrice, "abc")
	if _, ok := Int(o, TradePrice); ok {
		t.Fatalf("malformed int must read as absent")
	}
}

func TestLoadAndClear(t *testing.T) {
	m := NewMemory()
	m.Load("a", map[string]string{Coin: "Coin"})
	m.Load("b", map[string]string{TradeSign: "1"})
	if refs := m.Refs(); len(refs) != 2 || refs[0] != "a" {
		t.Fatalf("refs=%v", refs)
	}
	m.Clear()
	if len(m.Refs()) != 0 || m.Object("a").Has(Coin) {
		t.Fatalf("clear left data behind")
	}
}
