package handler

import (
	"go.uber.org/zap"

	"github.com/aethergs/server/internal/sim"
	"github.com/aethergs/server/internal/wire"
)

// HandleUnionCmd unpacks a UnionCmdNotify and dispatches each packed
// sub-command through the normal name table, in list order. Sub-commands
// the codec cannot name are dropped individually.
func HandleUnionCmd(w *sim.World, head wire.PacketHead, payload []byte, deps *Deps) {
	var ntf wire.UnionCmdNotify
	if !deps.Codec.Decode(head.Version, wire.MsgUnionCmdNotify, payload, &ntf) {
		deps.Log.Debug("bad union cmd payload", zap.Uint32("uid", head.UID))
		return
	}

	for i := range ntf.CmdList {
		cmd := &ntf.CmdList[i]
		name, ok := deps.Codec.NameFor(head.Version, cmd.MessageID)
		if !ok {
			deps.Log.Debug("union cmd with unmapped message id",
				zap.Uint16("message_id", cmd.MessageID))
			continue
		}
		if name == wire.MsgUnionCmdNotify {
			// no nesting
			continue
		}
		w.Dispatch(name, head, cmd.Body)
	}
}
