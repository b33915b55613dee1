package handler

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/aethergs/server/internal/ability"
	"github.com/aethergs/server/internal/sim"
	"github.com/aethergs/server/internal/wire"
)

// HandleAbilityInvocations processes an AbilityInvocationsNotify batch: each
// entry is applied to the simulation, then the batch is rebroadcast per its
// forward type. One bad entry never aborts the batch.
func HandleAbilityInvocations(w *sim.World, head wire.PacketHead, payload []byte, deps *Deps) {
	var ntf wire.AbilityInvocationsNotify
	if !deps.Codec.Decode(head.Version, wire.MsgAbilityInvocationsNotify, payload, &ntf) {
		deps.Log.Debug("bad ability invocations payload", zap.Uint32("uid", head.UID))
		return
	}

	forward := newForwardBatcher()
	for i := range ntf.Invokes {
		entry := &ntf.Invokes[i]
		applyAbilityInvoke(w, entry, deps)
		forward.add(entry.ForwardType, *entry)
	}
	forward.flush(w, wire.MsgAbilityInvocationsNotify, func(entries []wire.AbilityInvokeEntry) any {
		return &wire.AbilityInvocationsNotify{Invokes: entries}
	})
}

func applyAbilityInvoke(w *sim.World, entry *wire.AbilityInvokeEntry, deps *Deps) {
	switch entry.ArgumentType {
	case wire.ArgumentMetaModifierChange:
		var meta wire.AbilityMetaModifierChange
		if err := json.Unmarshal(entry.AbilityData, &meta); err != nil {
			deps.Log.Debug("bad modifier change meta", zap.Error(err))
			return
		}
		name, _ := abilityName(deps, meta.ParentAbilityName)
		w.Resolver.ResolveModifierChange(&ability.ModifierChange{
			EntityID:            entry.EntityID,
			TargetID:            entry.Head.TargetID,
			InstancedAbilityID:  entry.Head.InstancedAbilityID,
			InstancedModifierID: entry.Head.InstancedModifierID,
			ParentAbilityName:   name,
			ModifierLocalID:     meta.ModifierLocalID,
			Op:                  ability.ModifierOp(meta.Action),
		})

	case wire.ArgumentMetaAddAbility:
		var meta wire.AbilityMetaAddAbility
		if err := json.Unmarshal(entry.AbilityData, &meta); err != nil {
			deps.Log.Debug("bad add ability meta", zap.Error(err))
			return
		}
		name, ok := abilityName(deps, meta.Ability)
		if !ok {
			deps.Log.Debug("add ability: unresolvable name hash",
				zap.Uint32("hash", meta.Ability.Hash))
			return
		}
		entity, ok := w.Ctx.ResolveProto(entry.EntityID)
		if !ok || !w.ECS.Alive(entity) {
			deps.Log.Debug("add ability: unknown entity", zap.Uint32("entity_id", entry.EntityID))
			return
		}
		reg, ok := w.Ctx.Abilities.Get(entity)
		if !ok {
			return
		}
		reg.AddOrReplaceByServerID(meta.InstancedAbilityID, name)

	case wire.ArgumentMetaSetOverride:
		var meta wire.AbilityMetaSetOverride
		if err := json.Unmarshal(entry.AbilityData, &meta); err != nil {
			deps.Log.Debug("bad set override meta", zap.Error(err))
			return
		}
		entity, ok := w.Ctx.ResolveProto(entry.EntityID)
		if !ok || !w.ECS.Alive(entity) {
			return
		}
		reg, ok := w.Ctx.Abilities.Get(entity)
		if !ok {
			return
		}
		if _, inst, found := reg.FindByServerID(entry.Head.InstancedAbilityID); found {
			inst.SetSpecial(meta.Key, meta.Value)
		}

	case wire.ArgumentServerInvoke:
		w.Resolver.Resolve(&ability.Invocation{
			EntityID:            entry.EntityID,
			TargetID:            entry.Head.TargetID,
			InstancedAbilityID:  entry.Head.InstancedAbilityID,
			InstancedModifierID: entry.Head.InstancedModifierID,
			LocalID:             entry.Head.LocalID,
			AbilityData:         entry.AbilityData,
		})

	default:
		deps.Log.Debug("ignored invoke argument",
			zap.Int32("argument_type", int32(entry.ArgumentType)))
	}
}

// abilityName resolves a wire AbilityString to an interned name, preferring
// the verbatim string over the hash.
func abilityName(deps *Deps, s wire.AbilityString) (string, bool) {
	if s.Str != "" {
		return s.Str, true
	}
	if s.Hash != 0 {
		return deps.Store.NameByHash(s.Hash)
	}
	return "", false
}

// forwardBatcher regroups processed entries by forward type so every
// recipient class gets one rebroadcast notify instead of per-entry traffic.
type forwardBatcher struct {
	toAll    []wire.AbilityInvokeEntry
	toOthers []wire.AbilityInvokeEntry
	toHost   []wire.AbilityInvokeEntry
}

func newForwardBatcher() *forwardBatcher {
	return &forwardBatcher{}
}

func (b *forwardBatcher) add(ft wire.ForwardType, entry wire.AbilityInvokeEntry) {
	switch ft {
	case wire.ForwardToAll:
		b.toAll = append(b.toAll, entry)
	case wire.ForwardToAllExceptCur:
		b.toOthers = append(b.toOthers, entry)
	case wire.ForwardToHost:
		b.toHost = append(b.toHost, entry)
	}
}

func (b *forwardBatcher) flush(w *sim.World, name string, wrap func([]wire.AbilityInvokeEntry) any) {
	if len(b.toAll) > 0 {
		w.Output.SendToAll(name, wrap(b.toAll))
	}
	if len(b.toOthers) > 0 {
		w.Output.SendToOthers(w.UID, name, wrap(b.toOthers))
	}
	if len(b.toHost) > 0 {
		w.Output.Send(w.UID, name, wrap(b.toHost))
	}
}
