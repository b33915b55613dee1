package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aethergs/server/internal/wire"
)

// HandlerFunc processes one client message inside the owning world's
// goroutine.
type HandlerFunc func(w *World, head wire.PacketHead, payload []byte)

// Registry maps message names to handlers. The GM handler sits outside the
// name table: administrative packets are routed by cmd id before normal
// dispatch.
type Registry struct {
	handlers map[string]HandlerFunc
	gm       HandlerFunc
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc, 16),
		log:      log,
	}
}

func (r *Registry) Register(name string, fn HandlerFunc) {
	if _, dup := r.handlers[name]; dup {
		panic(fmt.Sprintf("duplicate handler for %s", name))
	}
	r.handlers[name] = fn
}

func (r *Registry) RegisterGM(fn HandlerFunc) {
	r.gm = fn
}

// Dispatch runs the handler for name. An unknown name or a panicking
// handler drops that one message; the queue keeps going.
func (r *Registry) Dispatch(w *World, name string, head wire.PacketHead, payload []byte) {
	fn, ok := r.handlers[name]
	if !ok {
		r.log.Debug("no handler for message", zap.String("message", name))
		return
	}
	r.safeCall(fn, w, head, payload, name)
}

// DispatchGM runs the administrative handler, if one is installed.
func (r *Registry) DispatchGM(w *World, head wire.PacketHead, payload []byte) {
	if r.gm == nil {
		r.log.Debug("gm packet with no gm handler installed")
		return
	}
	r.safeCall(r.gm, w, head, payload, "GMTalk")
}

func (r *Registry) safeCall(fn HandlerFunc, w *World, head wire.PacketHead, payload []byte, name string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panicked",
				zap.String("message", name), zap.Any("panic", rec))
		}
	}()
	fn(w, head, payload)
}
