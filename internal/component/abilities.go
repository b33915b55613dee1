package component

import (
	"go.uber.org/zap"

	"github.com/aethergs/server/internal/gamedata"
)

// MaxInstancedAbilities caps the per-entity ability registry. A malformed or
// adversarial invocation flood gets rejected no-ops past this point instead
// of unbounded growth.
const MaxInstancedAbilities = 100

// InstancedAbility is the runtime occurrence of an ability on one entity.
// Data points into the immutable gamedata store and is never owned here.
// Specials starts as a copy of the definition defaults and accumulates
// override writes for the life of the entity.
type InstancedAbility struct {
	InstancedAbilityID uint32 // server-assigned wire id, 0 = unassigned
	Data               *gamedata.AbilityDefinition
	Modifiers          *gamedata.OrderedModifiers
	Specials           map[string]float32
}

// Special reads an override value, falling back to the given default when the
// key was never seeded nor written.
func (a *InstancedAbility) Special(key string, def float32) float32 {
	if v, ok := a.Specials[key]; ok {
		return v
	}
	return def
}

// SetSpecial writes an override value.
func (a *InstancedAbility) SetSpecial(key string, v float32) {
	a.Specials[key] = v
}

// InstancedAbilities is the per-entity ability registry: a stable-index
// vector plus two side indexes. Entries are never removed; the whole
// component goes away with the entity.
type InstancedAbilities struct {
	list       []*InstancedAbility
	byServerID map[uint32]int
	byName     map[string]int

	store *gamedata.Store
	log   *zap.Logger
}

func NewInstancedAbilities(store *gamedata.Store, log *zap.Logger) *InstancedAbilities {
	return &InstancedAbilities{
		list:       make([]*InstancedAbility, 0, 8),
		byServerID: make(map[uint32]int, 8),
		byName:     make(map[string]int, 8),
		store:      store,
		log:        log,
	}
}

func (r *InstancedAbilities) Len() int {
	return len(r.list)
}

// At returns the ability at a known vector index.
func (r *InstancedAbilities) At(index int) (*InstancedAbility, bool) {
	if index < 0 || index >= len(r.list) {
		return nil, false
	}
	return r.list[index], true
}

// FindByServerID resolves the wire-assigned instanced ability id.
func (r *InstancedAbilities) FindByServerID(id uint32) (int, *InstancedAbility, bool) {
	idx, ok := r.byServerID[id]
	if !ok {
		return 0, nil, false
	}
	return idx, r.list[idx], true
}

// FindOrCreateByName returns the instance already indexed under name, or
// lazily creates one via AddOrReplaceByServerID.
func (r *InstancedAbilities) FindOrCreateByName(name string, serverID uint32) (int, *InstancedAbility, bool) {
	if idx, ok := r.byName[name]; ok {
		return idx, r.list[idx], true
	}
	return r.AddOrReplaceByServerID(serverID, name)
}

// AddOrReplaceByServerID binds serverID to the named ability definition.
// An existing entry gets its definition swapped in place: the vector index
// and any accumulated special overrides survive the replace. A new entry is
// appended seeded with the definition's default specials. serverID 0 means
// unassigned: such instances never share a replace key and always append.
func (r *InstancedAbilities) AddOrReplaceByServerID(serverID uint32, name string) (int, *InstancedAbility, bool) {
	def, ok := r.store.GetByName(name)
	if !ok {
		r.log.Debug("ability name not interned, dropping",
			zap.String("ability", name), zap.Uint32("server_id", serverID))
		return 0, nil, false
	}

	if idx, ok := r.byServerID[serverID]; serverID != 0 && ok {
		inst := r.list[idx]
		inst.Data = def
		inst.Modifiers = &def.Modifiers
		if _, named := r.byName[name]; !named {
			r.byName[name] = idx
		}
		return idx, inst, true
	}

	if len(r.list) >= MaxInstancedAbilities {
		r.log.Warn("instanced ability cap reached, rejecting",
			zap.String("ability", name), zap.Uint32("server_id", serverID))
		return 0, nil, false
	}

	specials := make(map[string]float32, len(def.AbilitySpecials))
	for k, v := range def.AbilitySpecials {
		specials[k] = v
	}
	inst := &InstancedAbility{
		InstancedAbilityID: serverID,
		Data:               def,
		Modifiers:          &def.Modifiers,
		Specials:           specials,
	}
	idx := len(r.list)
	r.list = append(r.list, inst)
	if serverID != 0 {
		r.byServerID[serverID] = idx
	}
	r.byName[name] = idx
	return idx, inst, true
}
