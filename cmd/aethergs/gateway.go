package main

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	gonet "github.com/aethergs/server/internal/net"
	"github.com/aethergs/server/internal/persist"
	"github.com/aethergs/server/internal/sim"
	"github.com/aethergs/server/internal/wire"
)

// gateway bridges the session read loops and the simulator. The first frame
// of every session must be a login; everything after is injected into the
// owning world's mailbox.
type gateway struct {
	sim       *sim.Simulator
	sessions  *gonet.SessionStore
	output    *gonet.OutputSink
	worker    *persist.Worker
	codec     wire.Codec
	gmEnabled bool
	log       *zap.Logger
}

func (g *gateway) onPacket(s *gonet.Session, f *gonet.Frame) {
	if s.UID() == 0 {
		g.handleLogin(s, f)
		return
	}

	if f.CmdID == wire.PlayerLoginCmdID {
		// already logged in
		return
	}
	if f.CmdID == wire.GMTalkCmdID && !g.gmEnabled {
		g.log.Debug("gm packet while gm disabled", zap.Uint32("uid", s.UID()))
		return
	}

	head := wire.PacketHead{
		UID:       s.UID(),
		ClientSeq: f.ClientSeq,
		Version:   s.Version(),
	}
	g.sim.Inject(head, f.CmdID, f.Payload, f.Immediate())
}

// handleLogin binds the session to a uid, pulls the player snapshot and
// spins up the world. Runs on the session's read goroutine; the blocking
// snapshot fetch stalls only this one connection.
func (g *gateway) handleLogin(s *gonet.Session, f *gonet.Frame) {
	if f.CmdID != wire.PlayerLoginCmdID {
		g.log.Debug("first frame is not login, dropping session",
			zap.String("ip", s.IP), zap.Uint16("cmd_id", f.CmdID))
		s.Close()
		return
	}

	var req wire.PlayerLoginReq
	if err := json.Unmarshal(f.Payload, &req); err != nil || req.UID == 0 || req.Version == "" {
		g.log.Debug("bad login payload", zap.String("ip", s.IP), zap.Error(err))
		s.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	snapshot, ok := g.worker.Fetch(ctx, req.UID)
	cancel()
	if !ok {
		snapshot = nil // fresh player
	}

	s.SetVersion(req.Version)
	s.SetUID(req.UID)
	g.sessions.Bind(req.UID, s)
	g.sim.CreateWorld(req.UID, snapshot, g.output, req.Version)

	rsp, err := json.Marshal(&wire.PlayerLoginRsp{Retcode: 0, UID: req.UID})
	if err != nil {
		return
	}
	s.Send(gonet.EncodeFrame(wire.PlayerLoginCmdID, f.ClientSeq, 0, rsp))

	g.log.Info("player logged in",
		zap.Uint32("uid", req.UID),
		zap.String("version", req.Version),
		zap.String("ip", s.IP))
}
