// Package store wraps the shared document database behind a narrow
// collection-scoped interface so services stay store-agnostic.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// Doc is a raw document: its id plus the decoded field map.
type Doc struct {
	ID   string
	Data map[string]any
}

type Filter struct {
	Field string
	Op    string
	Value any
}

type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Tx is the read-then-conditional-write surface inside RunTransaction.
// All reads must happen before any write; reads are re-validated against
// the latest committed state when the transaction commits.
type Tx interface {
	Get(col, id string) (Doc, error)
	Set(col, id string, data map[string]any) error
	Update(col, id string, data map[string]any) error
}

type Store interface {
	Get(ctx context.Context, col, id string) (Doc, error)
	Set(ctx context.Context, col, id string, data map[string]any) error
	SetMerge(ctx context.Context, col, id string, data map[string]any) error
	Add(ctx context.Context, col string, data map[string]any) (string, error)
	Delete(ctx context.Context, col, id string) error
	Query(ctx context.Context, col string, q Query) ([]Doc, error)
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}
