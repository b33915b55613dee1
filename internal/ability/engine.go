package ability

import (
	"go.uber.org/zap"

	"github.com/aethergs/server/internal/component"
	"github.com/aethergs/server/internal/core/ecs"
	"github.com/aethergs/server/internal/core/event"
	"github.com/aethergs/server/internal/gamedata"
)

// minLethalHP is the floor LoseHP may not cross unless the action is marked
// lethal: a non-lethal hit that would land inside [0, minLethalHP) is zeroed.
const minLethalHP = 0.01

// Engine runs the fixed catalogue of action handlers. Each handler reads its
// inputs through the evaluator, mutates target fight properties through the
// dirty-tracking setters, and emits a change-reason event.
type Engine struct {
	ctx *Context
}

func NewEngine(ctx *Context) *Engine {
	return &Engine{ctx: ctx}
}

// Subscribe wires the engine into the world's event bus.
func (e *Engine) Subscribe() {
	event.Subscribe(e.ctx.Bus, e.ExecuteAction)
	event.Subscribe(e.ctx.Bus, e.ExecuteMixin)
}

// ExecuteAction dispatches one resolved action to its handler.
func (e *Engine) ExecuteAction(ev event.ExecuteAction) {
	c := e.ctx

	inst := e.abilityAt(ev.AbilityEntity, ev.AbilityIndex)
	if inst == nil {
		c.Log.Debug("execute: stale ability reference",
			zap.Uint32("ability_index", ev.AbilityIndex))
		return
	}
	targetProps, ok := c.Props.Get(ev.TargetEntity)
	if !ok {
		c.Log.Debug("execute: target has no fight properties")
		return
	}

	switch KindOf(ev.Action.TypeName) {
	case ActionHealHP:
		e.healHP(inst, ev.AbilityEntity, ev.TargetEntity, targetProps, ev.Action)
	case ActionLoseHP:
		e.loseHP(inst, ev.AbilityEntity, ev.TargetEntity, targetProps, ev.Action)
	case ActionAddHPDebts:
		e.addHPDebts(inst, ev.TargetEntity, targetProps, ev.Action)
	case ActionReduceHPDebts:
		e.reduceHPDebts(inst, ev.TargetEntity, targetProps, ev.Action)
	case ActionSetOverrideMapValue:
		e.setOverrideMapValue(inst, targetProps, ev.Action)
	case ActionClearOverrideMap:
		e.clearOverrideMap(inst)
	case ActionAttachModifier:
		e.attachModifier(inst, ev, ev.Action.ModifierName, true)
	case ActionRemoveModifier:
		e.attachModifier(inst, ev, ev.Action.ModifierName, false)
	default:
		c.Log.Debug("execute: unhandled action type",
			zap.String("type", ev.Action.TypeName))
	}
}

// ExecuteMixin dispatches one resolved mixin. The mixin catalogue is open
// ended; the only server-side behavior today is modifier attachment, all
// other mixin kinds are client-authoritative and logged through.
func (e *Engine) ExecuteMixin(ev event.ExecuteMixin) {
	inst := e.abilityAt(ev.AbilityEntity, ev.AbilityIndex)
	if inst == nil {
		e.ctx.Log.Debug("execute mixin: stale ability reference")
		return
	}
	if ev.Mixin.ModifierName != "" {
		e.attachModifier(inst, event.ExecuteAction{
			AbilityEntity: ev.AbilityEntity,
			TargetEntity:  ev.TargetEntity,
			AbilityIndex:  ev.AbilityIndex,
			AbilityData:   ev.AbilityData,
		}, ev.Mixin.ModifierName, true)
		return
	}
	e.ctx.Log.Debug("execute mixin: no server-side behavior",
		zap.String("type", ev.Mixin.TypeName))
}

func (e *Engine) abilityAt(entity ecs.EntityID, index uint32) *component.InstancedAbility {
	reg, ok := e.ctx.Abilities.Get(entity)
	if !ok {
		return nil
	}
	inst, ok := reg.At(int(index))
	if !ok {
		return nil
	}
	return inst
}

// casterProps resolves the combat-property table the amount formulas read
// caster terms from: the ability entity itself, or its protocol owner when
// the entity is an owned gadget/summon.
func (e *Engine) casterProps(abilityEntity ecs.EntityID) (*component.FightProperties, bool) {
	c := e.ctx
	if info, ok := c.Info.Get(abilityEntity); ok && info.OwnerProtoID != 0 {
		owner, ok := c.entityByProto(info.OwnerProtoID)
		if !ok {
			return nil, false
		}
		return c.Props.Get(owner)
	}
	return c.Props.Get(abilityEntity)
}

// calcAmount sums the base evaluated amount with five independently optional
// ratio contributions, then applies the limbo clamp: a positive
// limboByTargetMaxHPRatio caps the amount so target HP cannot drop below
// max(ratio × target max HP, 1.0).
func (e *Engine) calcAmount(inst *component.InstancedAbility, caster, target *component.FightProperties, a *gamedata.ActionDefinition) float32 {
	amount := Evaluate(inst, caster, a.Amount, 0)
	if a.AmountByCasterMaxHPRatio != nil {
		amount += Evaluate(inst, caster, a.AmountByCasterMaxHPRatio, 0) * caster.Get(gamedata.FightPropMaxHP)
	}
	if a.AmountByCasterAttackRatio != nil {
		amount += Evaluate(inst, caster, a.AmountByCasterAttackRatio, 0) * caster.Get(gamedata.FightPropCurAttack)
	}
	if a.AmountByCasterCurrentHPRatio != nil {
		amount += Evaluate(inst, caster, a.AmountByCasterCurrentHPRatio, 0) * caster.Get(gamedata.FightPropCurHP)
	}
	if a.AmountByTargetMaxHPRatio != nil {
		amount += Evaluate(inst, target, a.AmountByTargetMaxHPRatio, 0) * target.Get(gamedata.FightPropMaxHP)
	}
	if a.AmountByTargetCurrentHPRatio != nil {
		amount += Evaluate(inst, target, a.AmountByTargetCurrentHPRatio, 0) * target.Get(gamedata.FightPropCurHP)
	}
	if a.LimboByTargetMaxHPRatio != nil {
		ratio := Evaluate(inst, target, a.LimboByTargetMaxHPRatio, 0)
		if ratio > 0 {
			floor := ratio * target.Get(gamedata.FightPropMaxHP)
			if floor < 1.0 {
				floor = 1.0
			}
			if most := target.Get(gamedata.FightPropCurHP) - floor; amount > most {
				amount = most
			}
		}
	}
	return amount
}

func (e *Engine) healHP(inst *component.InstancedAbility, abilityEntity, target ecs.EntityID, targetProps *component.FightProperties, a *gamedata.ActionDefinition) {
	caster, ok := e.casterProps(abilityEntity)
	if !ok {
		e.ctx.Log.Debug("heal hp: caster unresolvable, dropping")
		return
	}

	amount := e.calcAmount(inst, caster, targetProps, a)
	if !a.IgnoreAbilityProperty {
		amount *= 1 + caster.Get(gamedata.FightPropHealAdd) + targetProps.Get(gamedata.FightPropHealedAdd)
	}
	healRatio := float32(1.0)
	if a.HealRatio != nil {
		healRatio = Evaluate(inst, caster, a.HealRatio, 1.0)
	}
	amount *= healRatio
	if amount <= 0 {
		return
	}

	old := targetProps.Get(gamedata.FightPropCurHP)
	cur := targetProps.SetClamped(gamedata.FightPropCurHP, old+amount, 0, targetProps.MaxHP())
	event.Emit(e.ctx.Bus, event.HPChanged{Entity: target, Delta: cur - old, Heal: true})
}

func (e *Engine) loseHP(inst *component.InstancedAbility, abilityEntity, target ecs.EntityID, targetProps *component.FightProperties, a *gamedata.ActionDefinition) {
	caster, ok := e.casterProps(abilityEntity)
	if !ok {
		e.ctx.Log.Debug("lose hp: caster unresolvable, dropping")
		return
	}

	amount := e.calcAmount(inst, caster, targetProps, a)
	if amount <= 0 {
		return
	}
	old := targetProps.Get(gamedata.FightPropCurHP)
	if !a.Lethal && old-amount < minLethalHP {
		// would be an accidental kill; the action zeroes instead
		return
	}
	cur := targetProps.SetClamped(gamedata.FightPropCurHP, old-amount, 0, targetProps.MaxHP())
	event.Emit(e.ctx.Bus, event.HPChanged{Entity: target, Delta: cur - old, Heal: false})
}

func (e *Engine) addHPDebts(inst *component.InstancedAbility, target ecs.EntityID, targetProps *component.FightProperties, a *gamedata.ActionDefinition) {
	delta := Evaluate(inst, targetProps, a.Value, 0)
	if delta <= 0 {
		return
	}
	limit := 2 * targetProps.MaxHP()
	old := targetProps.Get(gamedata.FightPropCurHPDebts)
	if old+delta > limit {
		// over-limit debt is a data error in the authored graph, not abuse
		e.ctx.Log.Warn("hp debts over limit, clamping",
			zap.Float32("debts", old+delta), zap.Float32("limit", limit))
	}
	cur := targetProps.SetClamped(gamedata.FightPropCurHPDebts, old+delta, 0, limit)
	event.Emit(e.ctx.Bus, event.DebtChanged{Entity: target, Delta: cur - old, Change: event.DebtAdded})
}

func (e *Engine) reduceHPDebts(inst *component.InstancedAbility, target ecs.EntityID, targetProps *component.FightProperties, a *gamedata.ActionDefinition) {
	delta := Evaluate(inst, targetProps, a.Value, 0)
	if delta <= 0 {
		return
	}
	limit := 2 * targetProps.MaxHP()
	old := targetProps.Get(gamedata.FightPropCurHPDebts)
	cur := targetProps.SetClamped(gamedata.FightPropCurHPDebts, old-delta, 0, limit)
	change := event.DebtPaid
	if cur == 0 && old > 0 {
		change = event.DebtFinished
	}
	event.Emit(e.ctx.Bus, event.DebtChanged{Entity: target, Delta: cur - old, Change: change})
}

func (e *Engine) setOverrideMapValue(inst *component.InstancedAbility, targetProps *component.FightProperties, a *gamedata.ActionDefinition) {
	if a.OverrideKey == "" {
		e.ctx.Log.Debug("set override: missing key")
		return
	}
	inst.SetSpecial(a.OverrideKey, Evaluate(inst, targetProps, a.Value, 0))
}

func (e *Engine) clearOverrideMap(inst *component.InstancedAbility) {
	inst.Specials = make(map[string]float32, len(inst.Data.AbilitySpecials))
	for k, v := range inst.Data.AbilitySpecials {
		inst.Specials[k] = v
	}
}

// attachModifier runs a named modifier's OnAdded (or OnRemoved) actions
// inline against the same ability instance.
func (e *Engine) attachModifier(inst *component.InstancedAbility, ev event.ExecuteAction, name string, attach bool) {
	md, ok := inst.Modifiers.Get(name)
	if !ok {
		e.ctx.Log.Debug("attach modifier: unknown modifier",
			zap.String("modifier", name), zap.String("ability", inst.Data.AbilityName))
		return
	}
	hook := md.OnAdded
	if !attach {
		hook = md.OnRemoved
	}
	for i := range hook {
		event.Emit(e.ctx.Bus, event.ExecuteAction{
			AbilityEntity: ev.AbilityEntity,
			TargetEntity:  ev.TargetEntity,
			AbilityIndex:  ev.AbilityIndex,
			Action:        &hook[i],
			AbilityData:   ev.AbilityData,
		})
	}
}
