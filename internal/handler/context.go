package handler

import (
	"go.uber.org/zap"

	"github.com/aethergs/server/internal/gamedata"
	"github.com/aethergs/server/internal/sim"
	"github.com/aethergs/server/internal/wire"
)

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Codec wire.Codec
	Store *gamedata.Store

	// GMTokenHash is the bcrypt hash gating GMTalk commands; empty disables
	// the whole administrative surface.
	GMTokenHash string

	Log *zap.Logger
}

// RegisterAll registers every message handler into the registry. Handlers
// run inside the owning world's goroutine, so none of them lock.
func RegisterAll(reg *sim.Registry, deps *Deps) {
	reg.Register(wire.MsgAbilityInvocationsNotify, func(w *sim.World, head wire.PacketHead, payload []byte) {
		HandleAbilityInvocations(w, head, payload, deps)
	})
	reg.Register(wire.MsgCombatInvocationsNotify, func(w *sim.World, head wire.PacketHead, payload []byte) {
		HandleCombatInvocations(w, head, payload, deps)
	})
	reg.Register(wire.MsgUnionCmdNotify, func(w *sim.World, head wire.PacketHead, payload []byte) {
		HandleUnionCmd(w, head, payload, deps)
	})
	if deps.GMTokenHash != "" {
		reg.RegisterGM(func(w *sim.World, head wire.PacketHead, payload []byte) {
			HandleGMTalk(w, head, payload, deps)
		})
	}
}
