package component

import (
	"github.com/aethergs/server/internal/gamedata"
)

// FightProperties is the numeric combat-stat table of one entity. All HP,
// attack, defense and debt state lives here. Writes land in a pending layer
// that doubles as the dirty set; Flush drains it into outbound notifies and
// merges the values back so repeat reads stay consistent within a tick.
//
// Owned exclusively by the entity's world goroutine, never locked.
type FightProperties struct {
	values  map[gamedata.FightProp]float32
	pending map[gamedata.FightProp]float32
}

func NewFightProperties() *FightProperties {
	return &FightProperties{
		values:  make(map[gamedata.FightProp]float32, 16),
		pending: make(map[gamedata.FightProp]float32, 4),
	}
}

// Get reads a property, preferring an unflushed pending write.
func (f *FightProperties) Get(prop gamedata.FightProp) float32 {
	if v, ok := f.pending[prop]; ok {
		return v
	}
	return f.values[prop]
}

// Set writes a property and marks it dirty.
func (f *FightProperties) Set(prop gamedata.FightProp, v float32) {
	f.pending[prop] = v
}

// Change adds a delta to a property and marks it dirty.
func (f *FightProperties) Change(prop gamedata.FightProp, delta float32) {
	f.Set(prop, f.Get(prop)+delta)
}

// SetClamped writes a property clamped into [lo, hi] and returns the value
// actually stored.
func (f *FightProperties) SetClamped(prop gamedata.FightProp, v, lo, hi float32) float32 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	f.Set(prop, v)
	return v
}

// Seed writes a property without marking it dirty. Used when building an
// entity from template or snapshot data, before the first sync.
func (f *FightProperties) Seed(prop gamedata.FightProp, v float32) {
	f.values[prop] = v
}

// DirtyCount reports how many properties await a flush.
func (f *FightProperties) DirtyCount() int {
	return len(f.pending)
}

// Flush calls fn for every dirty property, then merges the pending layer
// into the base values and clears it.
func (f *FightProperties) Flush(fn func(prop gamedata.FightProp, value float32)) {
	for prop, v := range f.pending {
		if fn != nil {
			fn(prop, v)
		}
		f.values[prop] = v
	}
	clear(f.pending)
}

// All copies the effective property table (base merged with pending).
// Used when serializing a snapshot.
func (f *FightProperties) All() map[gamedata.FightProp]float32 {
	out := make(map[gamedata.FightProp]float32, len(f.values)+len(f.pending))
	for p, v := range f.values {
		out[p] = v
	}
	for p, v := range f.pending {
		out[p] = v
	}
	return out
}

// MaxHP is a convenience for the clamp invariants.
func (f *FightProperties) MaxHP() float32 {
	return f.Get(gamedata.FightPropMaxHP)
}
