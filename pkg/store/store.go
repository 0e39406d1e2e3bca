// Package store defines the canonical entity model shared by every
// persistence backend, and the Store contract the backends implement.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies one of the four entity collections.
type Kind string

const (
	KindMusicians Kind = "musicians"
	KindRequests  Kind = "requests"
	KindResponses Kind = "responses"
	KindMatches   Kind = "matches"
)

// Kinds lists every entity kind in route-registration order.
var Kinds = []Kind{KindMusicians, KindRequests, KindResponses, KindMatches}

// Record is an entity in its canonical (API-facing, camelCase) shape.
type Record map[string]any

// Request status values. Payment transitions and committee confirmation
// share this single field.
const (
	StatusOpen            = "Open"
	StatusAwaitingPayment = "Awaiting Payment"
	StatusPaid            = "Paid"
	StatusPaymentExpired  = "Payment Expired"
	StatusConfirmed       = "Confirmed"
)

// Store is the uniform persistence contract. Both the Postgres row store
// and the Google Sheets store implement it; business logic never branches
// on the concrete backend.
type Store interface {
	// List returns all records of a kind, most-recent-first where the
	// backend supports ordering.
	List(ctx context.Context, kind Kind) ([]Record, error)

	// Append inserts a new record, assigning an id when the payload has
	// none, and returns the stored record in canonical shape.
	Append(ctx context.Context, kind Kind, payload Record) (Record, error)

	// Patch merges the given fields onto the record matched by id.
	// Returns nil, nil when no record matches.
	Patch(ctx context.Context, kind Kind, id string, patch Record) (Record, error)

	// Remove deletes the record matched by id. Returns false when no
	// record matches.
	Remove(ctx context.Context, kind Kind, id string) (bool, error)

	Close()
}

// ErrConfigMissing marks operations rejected because required backend
// configuration is absent. Detected before any network call is attempted.
var ErrConfigMissing = errors.New("missing configuration")

// ConfigMissing builds an ErrConfigMissing with setup instructions.
func ConfigMissing(detail string) error {
	return fmt.Errorf("%w: %s", ErrConfigMissing, detail)
}

// ErrUnknownKind is returned when a Kind has no schema table.
var ErrUnknownKind = errors.New("unknown entity kind")

// unconfigured is a Store whose every operation fails with the same
// ErrConfigMissing. Installed at startup when the selected backend is
// missing required settings, so handlers surface the setup message
// instead of the process refusing to boot.
type unconfigured struct {
	err error
}

// Unconfigured returns a Store that rejects every call with
// ErrConfigMissing carrying the given setup instructions.
func Unconfigured(detail string) Store {
	return unconfigured{err: ConfigMissing(detail)}
}

func (u unconfigured) List(context.Context, Kind) ([]Record, error) { return nil, u.err }

func (u unconfigured) Append(context.Context, Kind, Record) (Record, error) { return nil, u.err }

func (u unconfigured) Patch(context.Context, Kind, string, Record) (Record, error) {
	return nil, u.err
}

func (u unconfigured) Remove(context.Context, Kind, string) (bool, error) { return false, u.err }

func (u unconfigured) Close() {}
