package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dstrand/tally/internal/model"
)

type PendingOpStore struct {
	db DBTX
}

func NewPendingOpStore(db DBTX) *PendingOpStore {
	return &PendingOpStore{db: db}
}

// Enqueue appends one operation to the replay queue. The sequence id is
// assigned by the database and never reused.
func (s *PendingOpStore) Enqueue(entity model.EntityType, action model.Action, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal pending payload: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO pending_operations (entity_type, action, payload) VALUES (?, ?, ?)`,
		string(entity), string(action), string(body),
	)
	if err != nil {
		return fmt.Errorf("enqueue pending op: %w", err)
	}
	return nil
}

// All returns the full queue ordered by sequence id, oldest first.
func (s *PendingOpStore) All() ([]model.PendingOp, error) {
	rows, err := s.db.Query(`SELECT seq, entity_type, action, payload, enqueued_at FROM pending_operations ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list pending ops: %w", err)
	}
	defer rows.Close()

	var out []model.PendingOp
	for rows.Next() {
		var op model.PendingOp
		var entity, action, payload, enqueued string
		if err := rows.Scan(&op.Seq, &entity, &action, &payload, &enqueued); err != nil {
			return nil, fmt.Errorf("scan pending op: %w", err)
		}
		op.EntityType = model.EntityType(entity)
		op.Action = model.Action(action)
		op.Payload = json.RawMessage(payload)
		if ts, err := time.Parse(time.RFC3339, enqueued); err == nil {
			op.EnqueuedAt = ts
		}
		out = append(out, op)
	}
	return out, rows.Err()
}

// Count returns the number of queued operations.
func (s *PendingOpStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM pending_operations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending ops: %w", err)
	}
	return n, nil
}

// ClearThrough deletes every operation with a sequence id at or below seq.
// Operations enqueued after a drain snapshot keep higher ids and survive
// for the next pass.
func (s *PendingOpStore) ClearThrough(seq int64) error {
	if _, err := s.db.Exec(`DELETE FROM pending_operations WHERE seq <= ?`, seq); err != nil {
		return fmt.Errorf("clear pending ops: %w", err)
	}
	return nil
}

// Clear wipes the whole queue.
func (s *PendingOpStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM pending_operations`); err != nil {
		return fmt.Errorf("clear pending ops: %w", err)
	}
	return nil
}
