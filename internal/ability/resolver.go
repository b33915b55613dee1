package ability

import (
	"go.uber.org/zap"

	"github.com/aethergs/server/internal/component"
	"github.com/aethergs/server/internal/core/ecs"
	"github.com/aethergs/server/internal/core/event"
	"github.com/aethergs/server/internal/gamedata"
)

// Invocation is one decoded server-invoke entry from the wire: which entity
// acted, on what, and which nested action/mixin the local_id addresses.
type Invocation struct {
	EntityID            uint32
	TargetID            uint32
	InstancedAbilityID  uint32
	InstancedModifierID uint32
	LocalID             int32
	AbilityData         []byte
}

// Resolver turns invocations into exactly one ExecuteAction or ExecuteMixin
// event apiece. Every lookup miss is non-fatal: the single invocation is
// logged at debug and dropped, the surrounding batch keeps going.
type Resolver struct {
	ctx *Context
}

func NewResolver(ctx *Context) *Resolver {
	return &Resolver{ctx: ctx}
}

// Resolve processes one invocation end to end.
func (r *Resolver) Resolve(inv *Invocation) {
	c := r.ctx

	entity, ok := c.entityByProto(inv.EntityID)
	if !ok {
		c.Log.Debug("invoke: unknown acting entity", zap.Uint32("entity_id", inv.EntityID))
		return
	}
	target := entity
	if inv.TargetID != 0 {
		if t, ok := c.entityByProto(inv.TargetID); ok {
			target = t
		} else {
			c.Log.Debug("invoke: unknown target entity", zap.Uint32("target_id", inv.TargetID))
			return
		}
	}

	abilityEntity, abilityIndex, inst, ok := r.resolveAbility(entity, inv)
	if !ok {
		c.Log.Debug("invoke: no resolvable ability",
			zap.Uint32("entity_id", inv.EntityID),
			zap.Uint32("instanced_ability_id", inv.InstancedAbilityID),
			zap.Uint32("instanced_modifier_id", inv.InstancedModifierID))
		return
	}

	local, err := DecodeLocalID(inv.LocalID)
	if err != nil {
		c.Log.Warn("invoke: bad local_id", zap.Int32("local_id", inv.LocalID), zap.Error(err))
		return
	}

	switch local.Kind {
	case ContainerAction:
		hook, ok := inst.Data.HookList(gamedata.HookKind(local.ConfigIdx))
		if !ok {
			c.Log.Debug("invoke: unknown ability hook index", zap.Int32("config_idx", local.ConfigIdx))
			return
		}
		r.emitAction(hook, local.ActionIdx, abilityEntity, abilityIndex, target, inv.AbilityData)

	case ContainerMixin:
		r.emitMixin(inst.Data.AbilityMixins, local.MixinIdx, abilityEntity, abilityIndex, target, inv.AbilityData)

	case ContainerModifierAction:
		md, ok := inst.Modifiers.At(int(local.ModifierIdx))
		if !ok {
			c.Log.Debug("invoke: modifier index out of range", zap.Int32("modifier_idx", local.ModifierIdx))
			return
		}
		hook, ok := md.HookList(gamedata.HookKind(local.ConfigIdx))
		if !ok {
			c.Log.Debug("invoke: unknown modifier hook index", zap.Int32("config_idx", local.ConfigIdx))
			return
		}
		r.emitAction(hook, local.ActionIdx, abilityEntity, abilityIndex, target, inv.AbilityData)

	case ContainerModifierMixin:
		md, ok := inst.Modifiers.At(int(local.ModifierIdx))
		if !ok {
			c.Log.Debug("invoke: modifier index out of range", zap.Int32("modifier_idx", local.ModifierIdx))
			return
		}
		r.emitMixin(md.ModifierMixins, local.MixinIdx, abilityEntity, abilityIndex, target, inv.AbilityData)
	}
}

// resolveAbility walks the priority chain: modifier controller first, then
// direct instanced ability id on the acting entity.
func (r *Resolver) resolveAbility(entity ecs.EntityID, inv *Invocation) (ecs.EntityID, uint32, *component.InstancedAbility, bool) {
	c := r.ctx

	if inv.InstancedModifierID != 0 {
		mods, ok := c.Modifiers.Get(entity)
		if !ok {
			return 0, 0, nil, false
		}
		ctrl, ok := mods.Get(inv.InstancedModifierID)
		if !ok || ctrl.AbilityIndex < 0 {
			return 0, 0, nil, false
		}
		owner := entity
		if !ctrl.TargetEntity.IsZero() && c.World.Alive(ctrl.TargetEntity) {
			owner = ctrl.TargetEntity
		}
		reg, ok := c.Abilities.Get(owner)
		if !ok {
			return 0, 0, nil, false
		}
		inst, ok := reg.At(ctrl.AbilityIndex)
		if !ok {
			return 0, 0, nil, false
		}
		return owner, uint32(ctrl.AbilityIndex), inst, true
	}

	if inv.InstancedAbilityID != 0 {
		reg, ok := c.Abilities.Get(entity)
		if !ok {
			return 0, 0, nil, false
		}
		idx, inst, ok := reg.FindByServerID(inv.InstancedAbilityID)
		if !ok {
			return 0, 0, nil, false
		}
		return entity, uint32(idx), inst, true
	}

	return 0, 0, nil, false
}

// emitAction selects collect_actions[actionIdx-1] from the flattened hook
// list. The wire index is 1-based.
func (r *Resolver) emitAction(hook []gamedata.ActionDefinition, actionIdx int32, abilityEntity ecs.EntityID, abilityIndex uint32, target ecs.EntityID, data []byte) {
	flat := FlattenActions(hook)
	if actionIdx < 1 || int(actionIdx) > len(flat) {
		r.ctx.Log.Debug("invoke: action index out of range",
			zap.Int32("action_idx", actionIdx), zap.Int("flattened", len(flat)))
		return
	}
	event.Emit(r.ctx.Bus, event.ExecuteAction{
		AbilityEntity: abilityEntity,
		TargetEntity:  target,
		AbilityIndex:  abilityIndex,
		Action:        flat[actionIdx-1],
		AbilityData:   data,
	})
}

// emitMixin indexes the mixin list directly. The wire index is 0-based.
func (r *Resolver) emitMixin(mixins []gamedata.MixinDefinition, mixinIdx int32, abilityEntity ecs.EntityID, abilityIndex uint32, target ecs.EntityID, data []byte) {
	if mixinIdx < 0 || int(mixinIdx) >= len(mixins) {
		r.ctx.Log.Debug("invoke: mixin index out of range",
			zap.Int32("mixin_idx", mixinIdx), zap.Int("mixins", len(mixins)))
		return
	}
	event.Emit(r.ctx.Bus, event.ExecuteMixin{
		AbilityEntity: abilityEntity,
		TargetEntity:  target,
		AbilityIndex:  abilityIndex,
		Mixin:         &mixins[mixinIdx],
		AbilityData:   data,
	})
}
