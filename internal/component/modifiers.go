package component

import (
	"github.com/aethergs/server/internal/core/ecs"
	"github.com/aethergs/server/internal/gamedata"
)

// MaxInstancedModifierID is a sanity bound on wire-assigned modifier ids.
// Ids above it are ignored.
const MaxInstancedModifierID = 2000

// ModifierController records which entity/ability/modifier a wire-assigned
// instanced modifier id refers to. Created or replaced on a modifier Added
// event, erased on Removed.
type ModifierController struct {
	TargetEntity ecs.EntityID // zero = unset
	AbilityIndex int          // index into the owning entity's registry, -1 = unset
	Modifier     *gamedata.ModifierDefinition
}

// InstancedModifiers is the per-entity table of active modifier controllers,
// keyed by the server-assigned instanced_modifier_id.
type InstancedModifiers struct {
	controllers map[uint32]*ModifierController
}

func NewInstancedModifiers() *InstancedModifiers {
	return &InstancedModifiers{
		controllers: make(map[uint32]*ModifierController, 8),
	}
}

func (m *InstancedModifiers) Get(id uint32) (*ModifierController, bool) {
	c, ok := m.controllers[id]
	return c, ok
}

// Put installs or replaces the controller for id. Ids beyond the sanity
// bound are rejected.
func (m *InstancedModifiers) Put(id uint32, c *ModifierController) bool {
	if id > MaxInstancedModifierID {
		return false
	}
	m.controllers[id] = c
	return true
}

func (m *InstancedModifiers) Remove(id uint32) {
	delete(m.controllers, id)
}

func (m *InstancedModifiers) Len() int {
	return len(m.controllers)
}
