package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTxContention is returned when a memory transaction keeps losing the
// optimistic-commit race.
var ErrTxContention = errors.New("transaction contention")

const memTxAttempts = 10

// Memory is an in-memory Store with the same conditional-commit transaction
// contract as the Firestore adapter. It backs the test suite.
type Memory struct {
	mu   sync.Mutex
	cols map[string]map[string]*memDoc
	seq  int64
}

type memDoc struct {
	data    map[string]any
	version int64
}

func NewMemory() *Memory {
	return &Memory{cols: make(map[string]map[string]*memDoc)}
}

func (s *Memory) Get(ctx context.Context, col, id string) (Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.cols[col][id]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return Doc{ID: id, Data: copyMap(d.data)}, nil
}

func (s *Memory) Set(ctx context.Context, col, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(col, id, copyMap(data))
	return nil
}

func (s *Memory) SetMerge(ctx context.Context, col, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeLocked(col, id, data)
	return nil
}

func (s *Memory) Add(ctx context.Context, col string, data map[string]any) (string, error) {
	id := uuid.NewString()
	return id, s.Set(ctx, col, id, data)
}

func (s *Memory) Delete(ctx context.Context, col, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cols[col]; ok {
		delete(c, id)
	}
	return nil
}

func (s *Memory) Query(ctx context.Context, col string, q Query) ([]Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []Doc
	for id, d := range s.cols[col] {
		if matchesFilters(d.data, q.Filters) {
			docs = append(docs, Doc{ID: id, Data: copyMap(d.data)})
		}
	}
	if q.OrderBy != "" {
		sort.Slice(docs, func(i, j int) bool {
			less := compareValues(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy]) < 0
			if q.Desc {
				return !less
			}
			return less
		})
	} else {
		// Firestore's default result order is by document id.
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *Memory) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	for attempt := 0; attempt < memTxAttempts; attempt++ {
		tx := &memTx{s: s, reads: make(map[string]int64)}
		if err := fn(tx); err != nil {
			return err
		}
		if s.commit(tx) {
			return nil
		}
	}
	return ErrTxContention
}

func (s *Memory) setLocked(col, id string, data map[string]any) {
	c, ok := s.cols[col]
	if !ok {
		c = make(map[string]*memDoc)
		s.cols[col] = c
	}
	s.seq++
	c[id] = &memDoc{data: data, version: s.seq}
}

func (s *Memory) mergeLocked(col, id string, data map[string]any) {
	cur, ok := s.cols[col][id]
	var merged map[string]any
	if ok {
		merged = copyMap(cur.data)
	} else {
		merged = make(map[string]any)
	}
	for k, v := range copyMap(data) {
		merged[k] = v
	}
	s.setLocked(col, id, merged)
}

func (s *Memory) commit(tx *memTx) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ver := range tx.reads {
		col, id := splitKey(key)
		cur := int64(0)
		if d, ok := s.cols[col][id]; ok {
			cur = d.version
		}
		if cur != ver {
			return false
		}
	}
	for _, w := range tx.writes {
		if w.merge {
			s.mergeLocked(w.col, w.id, w.data)
		} else {
			s.setLocked(w.col, w.id, copyMap(w.data))
		}
	}
	return true
}

type memWrite struct {
	col   string
	id    string
	data  map[string]any
	merge bool
}

type memTx struct {
	s      *Memory
	reads  map[string]int64
	writes []memWrite
}

func (tx *memTx) Get(col, id string) (Doc, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	d, ok := tx.s.cols[col][id]
	if !ok {
		tx.reads[joinKey(col, id)] = 0
		return Doc{}, ErrNotFound
	}
	tx.reads[joinKey(col, id)] = d.version
	return Doc{ID: id, Data: copyMap(d.data)}, nil
}

func (tx *memTx) Set(col, id string, data map[string]any) error {
	tx.writes = append(tx.writes, memWrite{col: col, id: id, data: copyMap(data)})
	return nil
}

func (tx *memTx) Update(col, id string, data map[string]any) error {
	tx.writes = append(tx.writes, memWrite{col: col, id: id, data: copyMap(data), merge: true})
	return nil
}

func joinKey(col, id string) string { return col + "/" + id }

func splitKey(key string) (string, string) {
	i := strings.Index(key, "/")
	return key[:i], key[i+1:]
}

func matchesFilters(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		cmp := compareValues(data[f.Field], f.Value)
		switch f.Op {
		case "==":
			if cmp != 0 {
				return false
			}
		case "<":
			if cmp >= 0 {
				return false
			}
		case "<=":
			if cmp > 0 {
				return false
			}
		case ">":
			if cmp <= 0 {
				return false
			}
		case ">=":
			if cmp < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders mixed document values: numbers compare numerically,
// everything else falls back to string formatting.
func compareValues(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
