package repository

import (
	"context"

	"github.com/greenhabit/greenpoints-backend/internal/store"
)

// ProgressRepository covers the secondary per-user progress collections
// (farm state, achievements, mission progress, pre-merge backups). They are
// opaque to the core: only merge and restore touch them, always as raw
// documents.
type ProgressRepository interface {
	GetFarm(ctx context.Context, uid string) (map[string]any, error)
	SetFarmMerge(ctx context.Context, uid string, data map[string]any) error
	ListFarms(ctx context.Context) ([]store.Doc, error)
	ListAchievementsByUser(ctx context.Context, uid string) ([]store.Doc, error)
	ListAllAchievements(ctx context.Context) ([]store.Doc, error)
	SetAchievementMerge(ctx context.Context, id string, data map[string]any) error
	ListMissionsByUser(ctx context.Context, uid string) ([]store.Doc, error)
	SetMissionMerge(ctx context.Context, id string, data map[string]any) error
	GetBackup(ctx context.Context, uid string) (map[string]any, error)
	SetBackupMerge(ctx context.Context, uid string, data map[string]any) error
}

type progressRepository struct {
	store store.Store
}

func NewProgressRepository(s store.Store) ProgressRepository {
	return &progressRepository{store: s}
}

func (r *progressRepository) GetFarm(ctx context.Context, uid string) (map[string]any, error) {
	doc, err := r.store.Get(ctx, ColFarms, uid)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (r *progressRepository) SetFarmMerge(ctx context.Context, uid string, data map[string]any) error {
	return r.store.SetMerge(ctx, ColFarms, uid, data)
}

func (r *progressRepository) ListFarms(ctx context.Context) ([]store.Doc, error) {
	return r.store.Query(ctx, ColFarms, store.Query{})
}

func (r *progressRepository) ListAchievementsByUser(ctx context.Context, uid string) ([]store.Doc, error) {
	return r.store.Query(ctx, ColAchievements, store.Query{
		Filters: []store.Filter{{Field: "userId", Op: "==", Value: uid}},
	})
}

func (r *progressRepository) ListAllAchievements(ctx context.Context) ([]store.Doc, error) {
	return r.store.Query(ctx, ColAchievements, store.Query{})
}

func (r *progressRepository) SetAchievementMerge(ctx context.Context, id string, data map[string]any) error {
	return r.store.SetMerge(ctx, ColAchievements, id, data)
}

func (r *progressRepository) ListMissionsByUser(ctx context.Context, uid string) ([]store.Doc, error) {
	return r.store.Query(ctx, ColMissions, store.Query{
		Filters: []store.Filter{{Field: "userId", Op: "==", Value: uid}},
	})
}

func (r *progressRepository) SetMissionMerge(ctx context.Context, id string, data map[string]any) error {
	return r.store.SetMerge(ctx, ColMissions, id, data)
}

func (r *progressRepository) GetBackup(ctx context.Context, uid string) (map[string]any, error) {
	doc, err := r.store.Get(ctx, ColUsersBackup, uid)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (r *progressRepository) SetBackupMerge(ctx context.Context, uid string, data map[string]any) error {
	return r.store.SetMerge(ctx, ColUsersBackup, uid, data)
}
