package net

import (
	"go.uber.org/zap"

	"github.com/aethergs/server/internal/wire"
)

// OutputSink implements wire.Output over the session store. Every send is
// best-effort per recipient: a missing or closed session is skipped without
// error, and encode misses (message unknown to the recipient's protocol
// version) are logged and skipped.
type OutputSink struct {
	store *SessionStore
	codec wire.Codec
	log   *zap.Logger
}

func NewOutputSink(store *SessionStore, codec wire.Codec, log *zap.Logger) *OutputSink {
	return &OutputSink{store: store, codec: codec, log: log}
}

func (o *OutputSink) Send(uid uint32, name string, msg any) {
	s, ok := o.store.ByUID(uid)
	if !ok {
		return
	}
	o.sendTo(s, name, msg)
}

func (o *OutputSink) SendToAll(name string, msg any) {
	o.store.EachUID(func(_ uint32, s *Session) {
		o.sendTo(s, name, msg)
	})
}

func (o *OutputSink) SendToOthers(hostUID uint32, name string, msg any) {
	o.store.EachUID(func(uid uint32, s *Session) {
		if uid != hostUID {
			o.sendTo(s, name, msg)
		}
	})
}

func (o *OutputSink) sendTo(s *Session, name string, msg any) {
	version := s.Version()
	payload, ok := o.codec.Encode(version, name, msg)
	if !ok {
		o.log.Debug("encode miss, skipping send",
			zap.String("message", name), zap.String("version", version))
		return
	}
	cmdID, ok := o.codec.CmdIDFor(version, name)
	if !ok {
		return
	}
	s.Send(EncodeFrame(cmdID, 0, 0, payload))
}
