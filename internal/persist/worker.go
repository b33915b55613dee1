package persist

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SaveRequest is one fire-and-forget snapshot write.
type SaveRequest struct {
	UID  uint32
	Data []byte
}

type fetchRequest struct {
	uid   uint32
	reply chan fetchReply
}

type fetchReply struct {
	data  []byte
	found bool
}

// Worker is the async persistence boundary. World goroutines talk to it only
// through bounded channels: saves are best-effort (a full queue drops the
// save for that cycle with a warning, never blocks the simulation), fetches
// are request/response.
type Worker struct {
	repo    *PlayerRepo
	saveCh  chan SaveRequest
	fetchCh chan fetchRequest
	done    chan struct{}
	log     *zap.Logger
}

func NewWorker(repo *PlayerRepo, queueSize int, log *zap.Logger) *Worker {
	return &Worker{
		repo:    repo,
		saveCh:  make(chan SaveRequest, queueSize),
		fetchCh: make(chan fetchRequest, 16),
		done:    make(chan struct{}),
		log:     log,
	}
}

// Run processes requests until ctx is cancelled, then drains pending saves.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case req := <-w.saveCh:
			w.doSave(req)
		case req := <-w.fetchCh:
			w.doFetch(ctx, req)
		case <-ctx.Done():
			for {
				select {
				case req := <-w.saveCh:
					w.doSave(req)
				default:
					return
				}
			}
		}
	}
}

// Wait blocks until Run has returned.
func (w *Worker) Wait() {
	<-w.done
}

// Save queues a snapshot write. Never blocks: on a full queue the save is
// lost for this cycle.
func (w *Worker) Save(uid uint32, data []byte) {
	select {
	case w.saveCh <- SaveRequest{UID: uid, Data: data}:
	default:
		w.log.Warn("save queue full, dropping snapshot", zap.Uint32("uid", uid))
	}
}

// Fetch loads a snapshot through the worker. Blocks the caller (used during
// world creation, before the world loop starts ticking).
func (w *Worker) Fetch(ctx context.Context, uid uint32) ([]byte, bool) {
	req := fetchRequest{uid: uid, reply: make(chan fetchReply, 1)}
	select {
	case w.fetchCh <- req:
	case <-ctx.Done():
		return nil, false
	}
	select {
	case rep := <-req.reply:
		return rep.data, rep.found
	case <-ctx.Done():
		return nil, false
	}
}

func (w *Worker) doSave(req SaveRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.repo.Save(ctx, req.UID, req.Data); err != nil {
		// the save is simply lost for this cycle
		w.log.Error("snapshot save failed", zap.Uint32("uid", req.UID), zap.Error(err))
	}
}

func (w *Worker) doFetch(ctx context.Context, req fetchRequest) {
	fctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	data, found, err := w.repo.Fetch(fctx, req.uid)
	if err != nil {
		w.log.Error("snapshot fetch failed", zap.Uint32("uid", req.uid), zap.Error(err))
		req.reply <- fetchReply{}
		return
	}
	req.reply <- fetchReply{data: data, found: found}
}
