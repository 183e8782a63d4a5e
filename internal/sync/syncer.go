// Package sync replays queued local mutations against the remote store
// and converges the local mirror back to remote truth.
package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/dstrand/tally/internal/connectivity"
	"github.com/dstrand/tally/internal/model"
	"github.com/dstrand/tally/internal/remote"
	"github.com/dstrand/tally/internal/store"
)

// Remote is the slice of the remote client the syncer needs. An
// interface so tests can stub replay behavior directly.
type Remote interface {
	Replay(ctx context.Context, entity model.EntityType, action model.Action, payload json.RawMessage) error
	Pull(ctx context.Context) (*remote.Snapshot, error)
}

// Result summarizes one drain pass.
type Result struct {
	Attempted int `json:"attempted"`
	Failed    int `json:"failed"`
}

// Syncer drains the pending-operation queue in enqueue order. At most
// one drain pass runs at a time; reentrant triggers are no-ops.
type Syncer struct {
	db       *sql.DB
	remote   Remote
	monitor  *connectivity.Monitor
	loader   *Loader
	logger   *slog.Logger
	inFlight atomic.Bool
	onResult func(Result)
}

func NewSyncer(db *sql.DB, rc Remote, monitor *connectivity.Monitor, loader *Loader, logger *slog.Logger) *Syncer {
	return &Syncer{
		db:      db,
		remote:  rc,
		monitor: monitor,
		loader:  loader,
		logger:  logger,
	}
}

// OnResult registers a listener for completed drain passes.
func (s *Syncer) OnResult(fn func(Result)) {
	s.onResult = fn
}

// Sync runs one full drain pass and then refreshes the local mirror.
// It returns (nil, nil) without effect when a pass is already running
// or connectivity is down.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, nil
	}
	defer s.inFlight.Store(false)

	if !s.monitor.Online() {
		return nil, nil
	}

	res, err := s.drain(ctx)
	if err != nil {
		return nil, err
	}

	// Converge to remote truth so server-side effects of the replay
	// (authoritative quantities, canonical ids) become visible locally.
	if err := s.loader.Refresh(ctx); err != nil {
		s.logger.Warn("snapshot refresh failed, staying on local data", "error", err)
	}

	if s.onResult != nil {
		s.onResult(*res)
	}
	return res, nil
}

func (s *Syncer) drain(ctx context.Context) (*Result, error) {
	s.monitor.BeginSync()
	defer s.monitor.EndSync()

	st := store.New(s.db)
	ops, err := st.Pending.All()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if len(ops) == 0 {
		return res, nil
	}

	s.logger.Info("drain pass started", "queued", len(ops))

	var maxSeq int64
	for _, op := range ops {
		maxSeq = op.Seq
		res.Attempted++

		if err := s.remote.Replay(ctx, op.EntityType, op.Action, op.Payload); err != nil {
			// Per-item failure: tally and keep going. The record stays
			// dirty and the operation is dropped with the drained
			// snapshot below.
			res.Failed++
			s.logger.Warn("replay failed",
				"seq", op.Seq,
				"entity", op.EntityType,
				"action", op.Action,
				"error", err)
			continue
		}

		if err := s.markSynced(st, op); err != nil {
			s.logger.Warn("mark synced failed", "seq", op.Seq, "error", err)
		}
	}

	// The drained snapshot is cleared regardless of per-item failures so
	// a permanently-failing operation can never wedge the queue. Ops
	// enqueued during the pass have higher sequence ids and survive.
	if err := st.Pending.ClearThrough(maxSeq); err != nil {
		return nil, err
	}

	s.logger.Info("drain pass finished", "attempted", res.Attempted, "failed", res.Failed)
	return res, nil
}

// markSynced flags the local record confirmed on the remote store.
// Categories carry no synced flag and deletes have no row left to mark.
func (s *Syncer) markSynced(st *store.Stores, op model.PendingOp) error {
	if op.Action == model.ActionDelete {
		return nil
	}

	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(op.Payload, &ref); err != nil {
		return err
	}

	switch op.EntityType {
	case model.EntityProduct:
		return st.Products.MarkSynced(ref.ID)
	case model.EntitySale:
		return st.Sales.MarkSynced(ref.ID)
	default:
		return nil
	}
}
