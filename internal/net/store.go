package net

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionStore tracks live sessions by id and by uid. The uid index fills in
// at auth time. Safe for concurrent use: the accept loop, read loops, and
// output sink all touch it.
type SessionStore struct {
	mu    sync.RWMutex
	byID  map[uint64]*Session
	byUID map[uint32]*Session
	log   *zap.Logger
}

func NewSessionStore(log *zap.Logger) *SessionStore {
	return &SessionStore{
		byID:  make(map[uint64]*Session, 64),
		byUID: make(map[uint32]*Session, 64),
		log:   log,
	}
}

func (st *SessionStore) Add(s *Session) {
	st.mu.Lock()
	st.byID[s.ID] = s
	st.mu.Unlock()
}

// Bind indexes a session under its authenticated uid. An existing session
// for the same uid is kicked.
func (st *SessionStore) Bind(uid uint32, s *Session) {
	st.mu.Lock()
	if old, ok := st.byUID[uid]; ok && old != s {
		old.Close()
	}
	st.byUID[uid] = s
	st.mu.Unlock()
}

func (st *SessionStore) Remove(s *Session) {
	st.mu.Lock()
	delete(st.byID, s.ID)
	if uid := s.UID(); uid != 0 && st.byUID[uid] == s {
		delete(st.byUID, uid)
	}
	st.mu.Unlock()
}

func (st *SessionStore) ByUID(uid uint32) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.byUID[uid]
	st.mu.RUnlock()
	return s, ok
}

// EachUID visits every authenticated session.
func (st *SessionStore) EachUID(fn func(uid uint32, s *Session)) {
	st.mu.RLock()
	for uid, s := range st.byUID {
		fn(uid, s)
	}
	st.mu.RUnlock()
}

// Sweep disconnects sessions unseen for longer than timeout and drops closed
// ones from the indexes. Liveness only: in-flight world commands for a swept
// session still run to completion.
func (st *SessionStore) Sweep(timeout time.Duration) {
	cutoff := time.Now().Add(-timeout)

	st.mu.Lock()
	var dead []*Session
	for _, s := range st.byID {
		if s.IsClosed() || s.LastSeen().Before(cutoff) {
			dead = append(dead, s)
		}
	}
	for _, s := range dead {
		delete(st.byID, s.ID)
		if uid := s.UID(); uid != 0 && st.byUID[uid] == s {
			delete(st.byUID, uid)
		}
	}
	st.mu.Unlock()

	for _, s := range dead {
		if !s.IsClosed() {
			st.log.Info("idle session disconnected",
				zap.Uint64("session", s.ID), zap.Uint32("uid", s.UID()))
		}
		s.Close()
	}
}

// RunSweeper sweeps periodically until stop is closed.
func (st *SessionStore) RunSweeper(every, timeout time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			st.Sweep(timeout)
		case <-stop:
			return
		}
	}
}
