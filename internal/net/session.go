package net

import (
	"encoding/binary"
	"io"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// PacketFunc receives every decoded frame from a session's read loop.
type PacketFunc func(s *Session, f *Frame)

// Session is a single client connection. Network I/O runs in dedicated
// goroutines; the session never touches simulation state directly, it hands
// frames to the gateway callback.
type Session struct {
	ID   uint64
	conn net.Conn

	cipher *Cipher
	mu     sync.Mutex // protects conn writes during init

	OutQueue chan []byte // writer goroutine drains this

	IP      string
	uid     atomic.Uint32
	version atomic.Value // string, set at auth

	lastSeen atomic.Int64 // unix nano of last inbound frame

	onPacket PacketFunc

	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// per-second inbound rate limit (readLoop goroutine only)
	pktPerSec  int
	pktCount   int
	pktResetAt int64

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, outSize, pktPerSec int, writeTimeout time.Duration, onPacket PacketFunc, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		onPacket:     onPacket,
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		pktPerSec:    pktPerSec,
		log:          log.With(zap.Uint64("session", id)),
	}
	s.lastSeen.Store(time.Now().UnixNano())
	s.version.Store("")
	return s
}

func (s *Session) UID() uint32      { return s.uid.Load() }
func (s *Session) SetUID(u uint32)  { s.uid.Store(u) }
func (s *Session) Version() string  { return s.version.Load().(string) }
func (s *Session) SetVersion(v string) { s.version.Store(v) }

// LastSeen is the wall-clock time of the last inbound frame.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Start sends the plaintext init frame carrying the cipher seed, then
// launches the reader and writer goroutines.
func (s *Session) Start() {
	seed := rand.Uint32() | 1 // never zero

	// [2B LE length=4][4B LE seed], plaintext
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint16(buf[0:2], 4)
	binary.LittleEndian.PutUint32(buf[2:6], seed)

	s.mu.Lock()
	_, err := s.conn.Write(buf)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("init frame write failed", zap.Error(err))
		s.Close()
		return
	}

	cipher, err := NewCipher(seed)
	if err != nil {
		s.log.Error("cipher init failed", zap.Error(err))
		s.Close()
		return
	}
	s.cipher = cipher

	go s.readLoop()
	go s.writeLoop()
}

// Send queues an encoded frame body for the writer goroutine. Non-blocking:
// a full queue disconnects the slow session.
func (s *Session) Send(body []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- body:
	default:
		s.log.Warn("out queue full, dropping slow session")
		s.Close()
	}
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) readLoop() {
	defer s.Close()
	var lenBuf [2]byte
	for {
		if _, err := io.ReadFull(s.conn, lenBuf[:]); err != nil {
			return
		}
		n := int(binary.LittleEndian.Uint16(lenBuf[:]))
		if n < frameHeaderSize || n > maxFrameBody {
			s.log.Warn("bad frame length, dropping session", zap.Int("len", n))
			return
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(s.conn, body); err != nil {
			return
		}
		s.cipher.DecryptIn(body)

		if !s.allowPacket() {
			s.log.Warn("inbound rate limit exceeded, dropping session")
			return
		}
		s.lastSeen.Store(time.Now().UnixNano())

		frame, err := DecodeFrame(body)
		if err != nil {
			s.log.Debug("malformed frame", zap.Error(err))
			continue
		}
		s.onPacket(s, frame)
	}
}

func (s *Session) allowPacket() bool {
	if s.pktPerSec <= 0 {
		return true
	}
	now := time.Now().Unix()
	if now != s.pktResetAt {
		s.pktResetAt = now
		s.pktCount = 0
	}
	s.pktCount++
	return s.pktCount <= s.pktPerSec
}

func (s *Session) writeLoop() {
	defer s.Close()
	var lenBuf [2]byte
	for {
		select {
		case body := <-s.OutQueue:
			s.cipher.EncryptOut(body)
			binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(body)))
			if s.writeTimeout > 0 {
				s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if _, err := s.conn.Write(lenBuf[:]); err != nil {
				return
			}
			if _, err := s.conn.Write(body); err != nil {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
