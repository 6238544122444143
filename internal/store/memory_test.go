package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, err := s.Get(ctx, "users", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "users", "u1", map[string]any{"greenPoints": int64(10)}); err != nil {
		t.Fatal(err)
	}
	doc, err := s.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Data["greenPoints"]; got != int64(10) {
		t.Fatalf("greenPoints=%v", got)
	}

	// Mutating the returned map must not leak into the store.
	doc.Data["greenPoints"] = int64(999)
	doc2, _ := s.Get(ctx, "users", "u1")
	if got := doc2.Data["greenPoints"]; got != int64(10) {
		t.Fatalf("store mutated through returned copy: %v", got)
	}
}

func TestMemorySetMerge(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_ = s.Set(ctx, "farms", "u1", map[string]any{"trees": []any{"a"}, "soil": "rich"})
	_ = s.SetMerge(ctx, "farms", "u1", map[string]any{"trees": []any{"a", "b"}})

	doc, _ := s.Get(ctx, "farms", "u1")
	if got := len(doc.Data["trees"].([]any)); got != 2 {
		t.Fatalf("trees=%d", got)
	}
	if doc.Data["soil"] != "rich" {
		t.Fatalf("merge dropped unrelated field: %v", doc.Data["soil"])
	}
}

func TestMemoryQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_ = s.Set(ctx, "cards", "c1", map[string]any{"provider": "Viettel", "value": int64(10000), "used": false})
	_ = s.Set(ctx, "cards", "c2", map[string]any{"provider": "Viettel", "value": int64(10000), "used": true})
	_ = s.Set(ctx, "cards", "c3", map[string]any{"provider": "Mobifone", "value": int64(10000), "used": false})

	docs, err := s.Query(ctx, "cards", Query{Filters: []Filter{
		{Field: "provider", Op: "==", Value: "Viettel"},
		{Field: "used", Op: "==", Value: false},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].ID != "c1" {
		t.Fatalf("docs=%v", docs)
	}

	// Numeric equality must hold across int/float encodings.
	docs, _ = s.Query(ctx, "cards", Query{Filters: []Filter{
		{Field: "value", Op: "==", Value: float64(10000)},
	}})
	if len(docs) != 3 {
		t.Fatalf("numeric match failed: %d docs", len(docs))
	}
}

func TestMemoryQueryOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_ = s.Set(ctx, "users", "a", map[string]any{"greenPoints": int64(5)})
	_ = s.Set(ctx, "users", "b", map[string]any{"greenPoints": int64(50)})
	_ = s.Set(ctx, "users", "c", map[string]any{"greenPoints": int64(20)})

	docs, err := s.Query(ctx, "users", Query{OrderBy: "greenPoints", Desc: true, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID != "b" || docs[1].ID != "c" {
		t.Fatalf("order wrong: %+v", docs)
	}
}

func TestMemoryTransactionConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_ = s.Set(ctx, "users", "u1", map[string]any{"greenPoints": int64(100)})

	attempts := 0
	err := s.RunTransaction(ctx, func(tx Tx) error {
		attempts++
		doc, err := tx.Get("users", "u1")
		if err != nil {
			return err
		}
		if attempts == 1 {
			// A competing write lands between read and commit; the
			// transaction must rerun against the fresh state.
			_ = s.Set(ctx, "users", "u1", map[string]any{"greenPoints": int64(40)})
		}
		points := doc.Data["greenPoints"].(int64)
		return tx.Update("users", "u1", map[string]any{"greenPoints": points - 10})
	})
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 2 {
		t.Fatalf("attempts=%d", attempts)
	}

	doc, _ := s.Get(ctx, "users", "u1")
	if got := doc.Data["greenPoints"]; got != int64(30) {
		t.Fatalf("greenPoints=%v, stale read committed", got)
	}
}

func TestMemoryTransactionErrorAborts(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_ = s.Set(ctx, "users", "u1", map[string]any{"greenPoints": int64(100)})

	boom := errors.New("boom")
	err := s.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.Update("users", "u1", map[string]any{"greenPoints": int64(0)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}

	doc, _ := s.Get(ctx, "users", "u1")
	if got := doc.Data["greenPoints"]; got != int64(100) {
		t.Fatalf("aborted tx wrote: %v", got)
	}
}
