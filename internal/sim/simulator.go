package sim

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aethergs/server/internal/wire"
)

// Simulator owns every live world. Each world runs on its own goroutine and
// is driven exclusively through a FIFO mailbox, so no world state is ever
// shared between goroutines. The simulator itself only tracks the uid to
// mailbox mapping.
type Simulator struct {
	mu     sync.RWMutex
	worlds map[uint32]chan Command
	wg     sync.WaitGroup

	deps        *Deps
	mailboxSize int
	tickEvery   time.Duration

	log *zap.Logger
}

func NewSimulator(deps *Deps, mailboxSize int, tickEvery time.Duration) *Simulator {
	if mailboxSize <= 0 {
		mailboxSize = 256
	}
	return &Simulator{
		worlds:      make(map[uint32]chan Command, 64),
		deps:        deps,
		mailboxSize: mailboxSize,
		tickEvery:   tickEvery,
		log:         deps.Log,
	}
}

// CreateWorld spins up a world goroutine for uid and queues its construction.
// A second create for a live uid is ignored; the existing world keeps running.
func (s *Simulator) CreateWorld(uid uint32, snapshot []byte, output wire.Output, version string) {
	s.mu.Lock()
	if _, exists := s.worlds[uid]; exists {
		s.mu.Unlock()
		s.log.Debug("world already exists", zap.Uint32("uid", uid))
		return
	}
	mailbox := make(chan Command, s.mailboxSize)
	s.worlds[uid] = mailbox
	s.wg.Add(1)
	s.mu.Unlock()

	go s.runWorld(uid, mailbox)
	mailbox <- cmdCreate{snapshot: snapshot, output: output, version: version}
}

// AddClientPacket routes one decoded frame into the owning world's mailbox.
// The message name is resolved here, outside the world goroutine; frames the
// codec cannot name are dropped.
func (s *Simulator) AddClientPacket(head wire.PacketHead, frame wireFrame) {
	mailbox, ok := s.mailbox(head.UID)
	if !ok {
		s.log.Debug("packet for unknown world", zap.Uint32("uid", head.UID))
		return
	}

	name := ""
	if frame.CmdID != wire.GMTalkCmdID {
		var known bool
		name, known = s.deps.Codec.NameFor(head.Version, frame.CmdID)
		if !known {
			s.log.Debug("unmapped cmd id, dropping",
				zap.Uint32("uid", head.UID), zap.Uint16("cmd_id", frame.CmdID))
			return
		}
	}

	cmd := cmdInput{
		head:      head,
		cmdID:     frame.CmdID,
		name:      name,
		payload:   frame.Payload,
		immediate: frame.Immediate,
	}
	select {
	case mailbox <- cmd:
	default:
		s.log.Warn("world mailbox full, dropping packet",
			zap.Uint32("uid", head.UID), zap.String("message", name))
	}
}

// wireFrame is the slice of a transport frame the simulator needs. The net
// package converts its own frame type into this at the gateway boundary.
type wireFrame struct {
	CmdID     uint16
	Payload   []byte
	Immediate bool
}

// Inject is the gateway entry point.
func (s *Simulator) Inject(head wire.PacketHead, cmdID uint16, payload []byte, immediate bool) {
	s.AddClientPacket(head, wireFrame{CmdID: cmdID, Payload: payload, Immediate: immediate})
}

// UpdateWorld queues a periodic tick for one world. Non-blocking: a world
// that cannot keep up skips ticks rather than stalling the driver.
func (s *Simulator) UpdateWorld(uid uint32) {
	mailbox, ok := s.mailbox(uid)
	if !ok {
		return
	}
	select {
	case mailbox <- cmdUpdate{}:
	default:
	}
}

// TickAll queues a periodic tick for every live world.
func (s *Simulator) TickAll() {
	s.mu.RLock()
	uids := make([]uint32, 0, len(s.worlds))
	for uid := range s.worlds {
		uids = append(uids, uid)
	}
	s.mu.RUnlock()
	for _, uid := range uids {
		s.UpdateWorld(uid)
	}
}

// StopWorld tears one world down, waiting for its final save to be queued.
func (s *Simulator) StopWorld(uid uint32) {
	s.mu.Lock()
	mailbox, ok := s.worlds[uid]
	if ok {
		delete(s.worlds, uid)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	done := make(chan struct{})
	mailbox <- cmdStop{done: done}
	<-done
}

// Shutdown stops every world and waits for all world goroutines to exit.
func (s *Simulator) Shutdown() {
	s.mu.Lock()
	boxes := make(map[uint32]chan Command, len(s.worlds))
	for uid, mb := range s.worlds {
		boxes[uid] = mb
	}
	s.worlds = make(map[uint32]chan Command)
	s.mu.Unlock()

	for _, mb := range boxes {
		done := make(chan struct{})
		mb <- cmdStop{done: done}
		<-done
	}
	s.wg.Wait()
}

// WorldCount reports the number of live worlds.
func (s *Simulator) WorldCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.worlds)
}

func (s *Simulator) mailbox(uid uint32) (chan Command, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mb, ok := s.worlds[uid]
	return mb, ok
}

// runWorld is the world goroutine: a strict FIFO loop over the mailbox.
// The world is built by the first cmdCreate and every later command runs
// against it in arrival order.
func (s *Simulator) runWorld(uid uint32, mailbox chan Command) {
	defer s.wg.Done()

	var w *World
	lastTick := time.Now()

	for cmd := range mailbox {
		switch c := cmd.(type) {
		case cmdCreate:
			if w != nil {
				continue
			}
			var err error
			w, err = NewWorld(s.deps, uid, c.snapshot, c.output, c.version)
			if err != nil {
				s.log.Error("world create failed", zap.Uint32("uid", uid), zap.Error(err))
				s.mu.Lock()
				if s.worlds[uid] == mailbox {
					delete(s.worlds, uid)
				}
				s.mu.Unlock()
				return
			}
			w.Update(0)
			lastTick = time.Now()

		case cmdInput:
			if w == nil {
				continue
			}
			w.AddPacket(c.head, c.cmdID, c.name, c.payload, c.cmdID == wire.GMTalkCmdID)
			if c.immediate {
				now := time.Now()
				w.Update(now.Sub(lastTick))
				lastTick = now
			}

		case cmdUpdate:
			if w == nil {
				continue
			}
			now := time.Now()
			w.Update(now.Sub(lastTick))
			lastTick = now

		case cmdStop:
			if w != nil {
				w.Update(time.Since(lastTick))
				if s.deps.Persist != nil {
					w.Save(time.Now())
				}
			}
			close(c.done)
			return
		}
	}
}
