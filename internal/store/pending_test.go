package store

import (
	"testing"

	"github.com/dstrand/tally/internal/model"
)

func TestPendingEnqueueOrder(t *testing.T) {
	db := setupTestDB(t)
	s := NewPendingOpStore(db)

	ops := []struct {
		entity model.EntityType
		action model.Action
	}{
		{model.EntityProduct, model.ActionAdd},
		{model.EntityProduct, model.ActionUpdate},
		{model.EntityProduct, model.ActionDelete},
	}
	for _, op := range ops {
		if err := s.Enqueue(op.entity, op.action, map[string]string{"id": "p1"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 ops, got %d", len(all))
	}
	for i, op := range all {
		if op.Action != ops[i].action {
			t.Errorf("op %d action = %s, want %s", i, op.Action, ops[i].action)
		}
		if i > 0 && all[i].Seq <= all[i-1].Seq {
			t.Errorf("seq not strictly increasing: %d then %d", all[i-1].Seq, all[i].Seq)
		}
		if op.EnqueuedAt.IsZero() {
			t.Errorf("op %d has zero enqueued_at", i)
		}
	}
}

func TestPendingClearThroughKeepsLaterOps(t *testing.T) {
	db := setupTestDB(t)
	s := NewPendingOpStore(db)

	for i := 0; i < 3; i++ {
		if err := s.Enqueue(model.EntitySale, model.ActionAdd, map[string]int{"n": i}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	all, _ := s.All()
	snapshotMax := all[1].Seq

	// An op enqueued after the drain snapshot was taken.
	if err := s.Enqueue(model.EntitySale, model.ActionAdd, map[string]int{"n": 3}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := s.ClearThrough(snapshotMax); err != nil {
		t.Fatalf("clear through: %v", err)
	}

	left, err := s.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("expected 2 surviving ops, got %d", len(left))
	}
	for _, op := range left {
		if op.Seq <= snapshotMax {
			t.Errorf("op seq %d should have been cleared", op.Seq)
		}
	}
}

func TestPendingSeqNeverReused(t *testing.T) {
	db := setupTestDB(t)
	s := NewPendingOpStore(db)

	s.Enqueue(model.EntityProduct, model.ActionAdd, map[string]string{"id": "a"})
	s.Enqueue(model.EntityProduct, model.ActionAdd, map[string]string{"id": "b"})
	all, _ := s.All()
	maxSeq := all[len(all)-1].Seq

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	s.Enqueue(model.EntityProduct, model.ActionAdd, map[string]string{"id": "c"})
	all, _ = s.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 op, got %d", len(all))
	}
	if all[0].Seq <= maxSeq {
		t.Errorf("seq %d reused after clear (previous max %d)", all[0].Seq, maxSeq)
	}
}
