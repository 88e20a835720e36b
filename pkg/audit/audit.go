// Package audit stores the append-only transaction log of the exchange.
//
// Every committed swap, liquidity change and farm action produces exactly one
// Record. Records are never updated or deleted.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the producer of a record.
type Kind string

const (
	KindSwap      Kind = "swap"
	KindLiquidity Kind = "liquidity"
	KindFarm      Kind = "farm"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSwap, KindLiquidity, KindFarm:
		return true
	}
	return false
}

// Errors returned by stores.
var (
	// ErrDuplicateKey is returned when a record id already exists.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a record or filter fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Record is one entry of the log. Payload holds the JSON encoding of the
// module transaction type.
type Record struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Action      string          `json:"action"`
	UserID      string          `json:"userId"`
	EntityID    string          `json:"entityId"`
	BlockHeight uint64          `json:"blockHeight"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// NewRecord encodes payload into a record with a fresh id.
func NewRecord(kind Kind, action, userID, entityID string, height uint64, ts time.Time, payload interface{}) (Record, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Record{
		ID:          uuid.NewString(),
		Kind:        kind,
		Action:      action,
		UserID:      userID,
		EntityID:    entityID,
		BlockHeight: height,
		Timestamp:   ts.UTC(),
		Payload:     raw,
	}, nil
}

// Validate checks the fields every store requires.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: record id is empty", ErrInvalidInput)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, r.Kind)
	}
	if r.EntityID == "" {
		return fmt.Errorf("%w: record %s has no entity", ErrInvalidInput, r.ID)
	}
	if len(r.Payload) == 0 || !json.Valid(r.Payload) {
		return fmt.Errorf("%w: record %s payload is not json", ErrInvalidInput, r.ID)
	}
	return nil
}

// Decode unmarshals the payload into v.
func (r Record) Decode(v interface{}) error {
	return json.Unmarshal(r.Payload, v)
}

// DefaultLimit and MaxLimit bound query sizes.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Filter selects records. Zero fields match everything.
type Filter struct {
	Kind     Kind
	UserID   string
	EntityID string
	// Limit caps the number of records returned, newest first.
	Limit int
}

// Normalize clamps the limit into [1, MaxLimit].
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// Matches reports whether r passes the filter.
func (f Filter) Matches(r Record) bool {
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.EntityID != "" && r.EntityID != f.EntityID {
		return false
	}
	return true
}

// Store is an append-only record log.
type Store interface {
	// Append persists a record. Returns ErrDuplicateKey if the id exists.
	Append(ctx context.Context, r Record) error

	// Get returns a record by id. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (Record, error)

	// Query returns matching records, newest first.
	Query(ctx context.Context, f Filter) ([]Record, error)

	// Close releases the store's resources.
	Close() error
}
