package repository

import (
	"context"
	"time"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

type SnapshotRepository interface {
	// Upsert records the user's balance under {userId}_{date} with merge
	// semantics, so re-running a day's job never destroys other fields.
	Upsert(ctx context.Context, userID string, points int64, date string) error
	ListByDate(ctx context.Context, date string) ([]model.Snapshot, error)
	ListDocsByUser(ctx context.Context, userID string) ([]store.Doc, error)
	SetDoc(ctx context.Context, id string, data map[string]any) error
	Delete(ctx context.Context, id string) error
}

type snapshotRepository struct {
	store store.Store
}

func NewSnapshotRepository(s store.Store) SnapshotRepository {
	return &snapshotRepository{store: s}
}

func (r *snapshotRepository) Upsert(ctx context.Context, userID string, points int64, date string) error {
	return r.store.SetMerge(ctx, ColSnapshots, model.SnapshotID(userID, date), map[string]any{
		"userId":    userID,
		"points":    points,
		"date":      date,
		"createdAt": time.Now().UTC(),
	})
}

func (r *snapshotRepository) ListByDate(ctx context.Context, date string) ([]model.Snapshot, error) {
	docs, err := r.store.Query(ctx, ColSnapshots, store.Query{
		Filters: []store.Filter{{Field: "date", Op: "==", Value: date}},
	})
	if err != nil {
		return nil, err
	}
	snaps := make([]model.Snapshot, 0, len(docs))
	for _, d := range docs {
		var s model.Snapshot
		if err := model.Decode(d.Data, &s); err != nil {
			return nil, err
		}
		s.ID = d.ID
		snaps = append(snaps, s)
	}
	return snaps, nil
}

func (r *snapshotRepository) ListDocsByUser(ctx context.Context, userID string) ([]store.Doc, error) {
	return r.store.Query(ctx, ColSnapshots, store.Query{
		Filters: []store.Filter{{Field: "userId", Op: "==", Value: userID}},
	})
}

func (r *snapshotRepository) SetDoc(ctx context.Context, id string, data map[string]any) error {
	return r.store.Set(ctx, ColSnapshots, id, data)
}

func (r *snapshotRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ColSnapshots, id)
}
