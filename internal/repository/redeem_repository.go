package repository

import (
	"context"
	"time"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

type RedeemRepository interface {
	Add(ctx context.Context, rec *model.Redeem) (string, error)
	ListRecent(ctx context.Context, limit int) ([]model.Redeem, error)
}

type redeemRepository struct {
	store store.Store
}

func NewRedeemRepository(s store.Store) RedeemRepository {
	return &redeemRepository{store: s}
}

func (r *redeemRepository) Add(ctx context.Context, rec *model.Redeem) (string, error) {
	return r.store.Add(ctx, ColRedeems, map[string]any{
		"provider":   rec.Provider,
		"value":      rec.Value,
		"cardId":     rec.CardID,
		"code":       rec.Code,
		"serial":     rec.Serial,
		"userId":     rec.UserID,
		"pointsUsed": rec.PointsUsed,
		"status":     rec.Status,
		"createdAt":  time.Now().UTC(),
	})
}

func (r *redeemRepository) ListRecent(ctx context.Context, limit int) ([]model.Redeem, error) {
	docs, err := r.store.Query(ctx, ColRedeems, store.Query{
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	recs := make([]model.Redeem, 0, len(docs))
	for _, d := range docs {
		var rec model.Redeem
		if err := model.Decode(d.Data, &rec); err != nil {
			return nil, err
		}
		rec.ID = d.ID
		recs = append(recs, rec)
	}
	return recs, nil
}
