package handler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aethergs/server/internal/gamedata"
	"github.com/aethergs/server/internal/sim"
	"github.com/aethergs/server/internal/wire"
)

// HandleGMTalk processes administrative text commands. The request rides a
// fixed cmd id outside the per-version name tables, so the payload is plain
// JSON. Every request is gated on the configured bcrypt token hash.
func HandleGMTalk(w *sim.World, head wire.PacketHead, payload []byte, deps *Deps) {
	var req wire.GMTalkReq
	if err := json.Unmarshal(payload, &req); err != nil {
		deps.Log.Debug("bad gm talk payload", zap.Uint32("uid", head.UID), zap.Error(err))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(deps.GMTokenHash), []byte(req.Token)) != nil {
		deps.Log.Warn("gm talk with bad token", zap.Uint32("uid", head.UID))
		gmReply(w, 1, "permission denied")
		return
	}

	fields := strings.Fields(req.Msg)
	if len(fields) == 0 {
		gmReply(w, 1, "empty command")
		return
	}

	deps.Log.Info("gm command", zap.Uint32("uid", head.UID), zap.String("cmd", req.Msg))

	switch strings.ToLower(fields[0]) {
	case "sethp":
		gmSetHP(w, fields[1:])
	case "prop":
		gmSetProp(w, fields[1:])
	case "addability":
		gmAddAbility(w, fields[1:], deps)
	case "dump":
		gmDump(w)
	default:
		gmReply(w, 1, "unknown command: "+fields[0])
	}
}

func gmReply(w *sim.World, retcode int32, msg string) {
	w.Output.Send(w.UID, wire.MsgGMTalkRsp, &wire.GMTalkRsp{Retcode: retcode, RetMsg: msg})
}

func gmSetHP(w *sim.World, args []string) {
	if len(args) != 1 {
		gmReply(w, 1, "usage: sethp <value>")
		return
	}
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		gmReply(w, 1, "bad value: "+args[0])
		return
	}
	props, ok := w.Ctx.Props.Get(w.Player.AvatarEntity)
	if !ok {
		gmReply(w, 1, "avatar has no properties")
		return
	}
	stored := props.SetClamped(gamedata.FightPropCurHP, float32(v), 0, props.MaxHP())
	gmReply(w, 0, fmt.Sprintf("hp = %.1f", stored))
}

func gmSetProp(w *sim.World, args []string) {
	if len(args) != 2 {
		gmReply(w, 1, "usage: prop <id> <value>")
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		gmReply(w, 1, "bad prop id: "+args[0])
		return
	}
	v, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		gmReply(w, 1, "bad value: "+args[1])
		return
	}
	props, ok := w.Ctx.Props.Get(w.Player.AvatarEntity)
	if !ok {
		gmReply(w, 1, "avatar has no properties")
		return
	}
	props.Set(gamedata.FightProp(id), float32(v))
	gmReply(w, 0, fmt.Sprintf("prop %d = %s", id, args[1]))
}

func gmAddAbility(w *sim.World, args []string, deps *Deps) {
	if len(args) != 1 {
		gmReply(w, 1, "usage: addability <name>")
		return
	}
	reg, ok := w.Ctx.Abilities.Get(w.Player.AvatarEntity)
	if !ok {
		gmReply(w, 1, "avatar has no ability registry")
		return
	}
	serverID := uint32(reg.Len() + 1)
	if _, _, added := reg.AddOrReplaceByServerID(serverID, args[0]); !added {
		gmReply(w, 1, "ability not found or registry full: "+args[0])
		return
	}
	gmReply(w, 0, fmt.Sprintf("added %s as #%d", args[0], serverID))
}

func gmDump(w *sim.World) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "uid=%d scene=%d avatar=%d", w.UID, w.Player.SceneID, w.Player.AvatarID)
	if props, ok := w.Ctx.Props.Get(w.Player.AvatarEntity); ok {
		fmt.Fprintf(&sb, " hp=%.1f/%.1f debts=%.1f",
			props.Get(gamedata.FightPropCurHP),
			props.MaxHP(),
			props.Get(gamedata.FightPropCurHPDebts))
	}
	if reg, ok := w.Ctx.Abilities.Get(w.Player.AvatarEntity); ok {
		fmt.Fprintf(&sb, " abilities=%d", reg.Len())
	}
	gmReply(w, 0, sb.String())
}
