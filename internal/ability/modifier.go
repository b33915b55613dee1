package ability

import (
	"go.uber.org/zap"

	"github.com/aethergs/server/internal/component"
	"github.com/aethergs/server/internal/core/ecs"
)

// ModifierOp is the lifecycle verb of a modifier-change wire event.
type ModifierOp int32

const (
	ModifierAdded ModifierOp = iota + 1
	ModifierRemoved
)

// ModifierChange is one decoded modifier lifecycle event.
type ModifierChange struct {
	EntityID            uint32
	TargetID            uint32
	InstancedAbilityID  uint32
	InstancedModifierID uint32
	ParentAbilityName   string
	ModifierLocalID     int32
	Op                  ModifierOp
}

// ResolveModifierChange maintains the acting entity's modifier controller
// table. Added locates the owning instanced ability through a four-step
// fallback chain (target by id, target by name with implicit creation, actor
// by id, actor by name with implicit creation), resolves the modifier
// positionally, and records a controller. Removed just erases the entry.
func (r *Resolver) ResolveModifierChange(mc *ModifierChange) {
	c := r.ctx

	entity, ok := c.entityByProto(mc.EntityID)
	if !ok {
		c.Log.Debug("modifier change: unknown entity", zap.Uint32("entity_id", mc.EntityID))
		return
	}

	mods, ok := c.Modifiers.Get(entity)
	if !ok {
		c.Log.Debug("modifier change: entity has no modifier table", zap.Uint32("entity_id", mc.EntityID))
		return
	}

	switch mc.Op {
	case ModifierRemoved:
		mods.Remove(mc.InstancedModifierID)
		return
	case ModifierAdded:
		// fall through
	default:
		c.Log.Debug("modifier change: unknown op", zap.Int32("op", int32(mc.Op)))
		return
	}

	if mc.InstancedModifierID > component.MaxInstancedModifierID {
		c.Log.Debug("modifier change: id beyond sanity bound",
			zap.Uint32("instanced_modifier_id", mc.InstancedModifierID))
		return
	}

	owner, idx, inst, ok := r.findModifierOwner(entity, mc)
	if !ok {
		c.Log.Debug("modifier change: no owning ability",
			zap.Uint32("entity_id", mc.EntityID),
			zap.String("parent_ability", mc.ParentAbilityName))
		return
	}

	md, ok := inst.Modifiers.At(int(mc.ModifierLocalID))
	if !ok {
		c.Log.Debug("modifier change: modifier_local_id out of range",
			zap.Int32("modifier_local_id", mc.ModifierLocalID),
			zap.String("ability", inst.Data.AbilityName))
		return
	}

	mods.Put(mc.InstancedModifierID, &component.ModifierController{
		TargetEntity: owner,
		AbilityIndex: idx,
		Modifier:     md,
	})
}

// findModifierOwner runs the Added fallback chain.
func (r *Resolver) findModifierOwner(entity ecs.EntityID, mc *ModifierChange) (ecs.EntityID, int, *component.InstancedAbility, bool) {
	c := r.ctx

	target, hasTarget := c.entityByProto(mc.TargetID)

	if hasTarget {
		if reg, ok := c.Abilities.Get(target); ok {
			if idx, inst, ok := reg.FindByServerID(mc.InstancedAbilityID); ok {
				return target, idx, inst, true
			}
			if mc.ParentAbilityName != "" {
				if idx, inst, ok := reg.FindOrCreateByName(mc.ParentAbilityName, mc.InstancedAbilityID); ok {
					return target, idx, inst, true
				}
			}
		}
	}

	if reg, ok := c.Abilities.Get(entity); ok {
		if idx, inst, ok := reg.FindByServerID(mc.InstancedAbilityID); ok {
			return entity, idx, inst, true
		}
		if mc.ParentAbilityName != "" {
			if idx, inst, ok := reg.FindOrCreateByName(mc.ParentAbilityName, mc.InstancedAbilityID); ok {
				return entity, idx, inst, true
			}
		}
	}

	return 0, 0, nil, false
}
