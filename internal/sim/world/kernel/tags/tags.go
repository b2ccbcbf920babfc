// Package tags is the per-object key/value store the economy persists into.
// Blocks are addressed by their block ref (WORLD@x,y,z), players by player ref.
package tags

import (
	"sort"
	"strconv"
	"sync"
)

// Keys written by the economy.
const (
	Coin = "coin"

	DisplayItem = "display_item"

	TradeSign     = "trade_sign"
	TradeAmount   = "trade_sign_amount"
	TradeMaterial = "trade_sign_material"
	TradeOwner    = "trade_sign_owner"
	TradePrice    = "trade_sign_price"
	TradePieces   = "trade_sign_pieces"

	CoinSign      = "coin_sign"
	CoinSignOwner = "coin_sign_owner"

	PlayerVaults = "coin_storage_chests"
	PlayerBuffer = "coin_buffer"
)

type Object interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Has(key string) bool
	Keys() []string
	Delete(key string)
}

type Store interface {
	Object(ref string) Object
}

// Int reads key as an integer. Missing or malformed values are absent.
func Int(o Object, key string) (int, bool) {
	v, ok := o.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func SetInt(o Object, key string, n int) {
	o.Set(key, strconv.Itoa(n))
}

// AddInt adds delta to key and clamps the stored result at zero.
func AddInt(o Object, key string, delta int) int {
	cur, _ := Int(o, key)
	next := cur + delta
	if next < 0 {
		next = 0
	}
	SetInt(o, key, next)
	return next
}

// Memory is an in-process Store. It is safe for concurrent use, though the
// economy only touches it from the world goroutine.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: map[string]map[string]string{}}
}

func (m *Memory) Object(ref string) Object { return memObject{m: m, ref: ref} }

// Refs lists every object ref holding at least one key, sorted.
func (m *Memory) Refs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for ref, kv := range m.data {
		if len(kv) > 0 {
			out = append(out, ref)
		}
	}
	sort.Strings(out)
	return out
}

// Load replaces the contents of ref without notifying anyone.
func (m *Memory) Load(ref string, kv map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]string, len(kv))
	for k, v := range kv {
		cp[k] = v
	}
	m.data[ref] = cp
}

// Clear drops every object.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string]map[string]string{}
}

type memObject struct {
	m   *Memory
	ref string
}

func (o memObject) Get(key string) (string, bool) {
	o.m.mu.RLock()
	defer o.m.mu.RUnlock()
	v, ok := o.m.data[o.ref][key]
	return v, ok
}

func (o memObject) Set(key, value string) {
	o.m.mu.Lock()
	defer o.m.mu.Unlock()
	kv := o.m.data[o.ref]
	if kv == nil {
		kv = map[string]string{}
		o.m.data[o.ref] = kv
	}
	kv[key] = value
}

func (o memObject) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

func (o memObject) Keys() []string {
	o.m.mu.RLock()
	defer o.m.mu.RUnlock()
	kv := o.m.data[o.ref]
	out := make([]string, 0, len(kv))
	for k := range kv {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (o memObject) Delete(key string) {
	o.m.mu.Lock()
	defer o.m.mu.Unlock()
	kv := o.m.data[o.ref]
	if kv == nil {
		return
	}
	delete(kv, key)
	if len(kv) == 0 {
		delete(o.m.data, o.ref)
	}
}
