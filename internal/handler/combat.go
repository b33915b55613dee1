package handler

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/aethergs/server/internal/core/event"
	"github.com/aethergs/server/internal/gamedata"
	"github.com/aethergs/server/internal/sim"
	"github.com/aethergs/server/internal/wire"
)

// HandleCombatInvocations processes a CombatInvocationsNotify batch: being-hit
// entries apply their damage to the defending entity, everything else is
// rebroadcast untouched per its forward type.
func HandleCombatInvocations(w *sim.World, head wire.PacketHead, payload []byte, deps *Deps) {
	var ntf wire.CombatInvocationsNotify
	if !deps.Codec.Decode(head.Version, wire.MsgCombatInvocationsNotify, payload, &ntf) {
		deps.Log.Debug("bad combat invocations payload", zap.Uint32("uid", head.UID))
		return
	}

	var toAll, toOthers, toHost []wire.CombatInvokeEntry
	for i := range ntf.InvokeList {
		entry := &ntf.InvokeList[i]
		if entry.ArgumentType == wire.CombatEvtBeingHit {
			applyBeingHit(w, entry.CombatData, deps)
		}
		switch entry.ForwardType {
		case wire.ForwardToAll:
			toAll = append(toAll, *entry)
		case wire.ForwardToAllExceptCur:
			toOthers = append(toOthers, *entry)
		case wire.ForwardToHost:
			toHost = append(toHost, *entry)
		}
	}

	if len(toAll) > 0 {
		w.Output.SendToAll(wire.MsgCombatInvocationsNotify, &wire.CombatInvocationsNotify{InvokeList: toAll})
	}
	if len(toOthers) > 0 {
		w.Output.SendToOthers(w.UID, wire.MsgCombatInvocationsNotify, &wire.CombatInvocationsNotify{InvokeList: toOthers})
	}
	if len(toHost) > 0 {
		w.Output.Send(w.UID, wire.MsgCombatInvocationsNotify, &wire.CombatInvocationsNotify{InvokeList: toHost})
	}
}

func applyBeingHit(w *sim.World, combatData []byte, deps *Deps) {
	var hit wire.EvtBeingHitInfo
	if err := json.Unmarshal(combatData, &hit); err != nil {
		deps.Log.Debug("bad being-hit payload", zap.Error(err))
		return
	}
	if hit.AttackResult.Damage <= 0 {
		return
	}

	entity, ok := w.Ctx.ResolveProto(hit.AttackResult.DefenseID)
	if !ok || !w.ECS.Alive(entity) {
		deps.Log.Debug("being-hit: unknown defender",
			zap.Uint32("defense_id", hit.AttackResult.DefenseID))
		return
	}
	props, ok := w.Ctx.Props.Get(entity)
	if !ok {
		return
	}

	old := props.Get(gamedata.FightPropCurHP)
	stored := props.SetClamped(gamedata.FightPropCurHP, old-hit.AttackResult.Damage, 0, props.MaxHP())
	event.Emit(w.Bus, event.HPChanged{Entity: entity, Delta: stored - old})
}
