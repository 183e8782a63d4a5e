package model

import (
	"encoding/json"
	"time"
)

type EntityType string

const (
	EntityProduct  EntityType = "product"
	EntitySale     EntityType = "sale"
	EntityCategory EntityType = "category"
)

type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// PendingOp is a durable record of one not-yet-confirmed local mutation.
// Seq is assigned by the store and defines replay order; it is never reused.
type PendingOp struct {
	Seq        int64           `json:"seq"`
	EntityType EntityType      `json:"entity_type"`
	Action     Action          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}
