// Package audit keeps the append-only record of every mutating ledger action.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable audit record. PreviousState and NewState carry the
// relevant before/after snapshot for state transitions. RecordID is a stable
// external identifier assigned once at write time.
type Entry struct {
	ID            int64          `json:"id"`
	RecordID      uuid.UUID      `json:"recordId"`
	At            time.Time      `json:"at"`
	Action        string         `json:"action"`
	Entity        string         `json:"entity"`
	EntityID      string         `json:"entityId"`
	UserID        *int64         `json:"userId,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	PreviousState map[string]any `json:"previousState,omitempty"`
	NewState      map[string]any `json:"newState,omitempty"`
}

// QueryFilter narrows audit reads. Zero values mean no filtering.
type QueryFilter struct {
	Entity   string
	EntityID string
	Limit    int
}

const (
	// DefaultQueryLimit applies when the caller requests no limit.
	DefaultQueryLimit = 100
	// MaxQueryLimit caps a single audit read.
	MaxQueryLimit = 500
)
