package net

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server accepts TCP connections and creates Sessions. Decoded frames are
// handed to the gateway callback; the server never touches simulation state.
type Server struct {
	listener     net.Listener
	nextID       atomic.Uint64
	store        *SessionStore
	outSize      int
	pktPerSec    int
	writeTimeout time.Duration
	onPacket     PacketFunc
	log          *zap.Logger
	closeCh      chan struct{}
}

func NewServer(bindAddr string, outSize, pktPerSec int, writeTimeout time.Duration, store *SessionStore, onPacket PacketFunc, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener:     ln,
		store:        store,
		outSize:      outSize,
		pktPerSec:    pktPerSec,
		writeTimeout: writeTimeout,
		onPacket:     onPacket,
		log:          log,
		closeCh:      make(chan struct{}),
	}, nil
}

// AcceptLoop runs in its own goroutine: accept, start the session, index it.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.outSize, s.pktPerSec, s.writeTimeout, s.onPacket, s.log)
		s.store.Add(sess)
		sess.Start()

		s.log.Info("session connected", zap.Uint64("session", id), zap.String("ip", sess.IP))
	}
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
