package repository

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

type CardRepository interface {
	Get(ctx context.Context, id string) (*model.Card, error)
	// FindAvailable returns the first unused card of the given type, or
	// store.ErrNotFound. This is a point-in-time pick; callers that claim the
	// card must re-validate it inside a transaction.
	FindAvailable(ctx context.Context, provider string, value int64) (*model.Card, error)
	GroupAvailable(ctx context.Context) ([]model.CardGroup, error)
	Add(ctx context.Context, card *model.Card) (string, error)
	ListAll(ctx context.Context) ([]model.Card, error)
	Delete(ctx context.Context, id string) error
}

type cardRepository struct {
	store store.Store
}

func NewCardRepository(s store.Store) CardRepository {
	return &cardRepository{store: s}
}

func (r *cardRepository) Get(ctx context.Context, id string) (*model.Card, error) {
	doc, err := r.store.Get(ctx, ColCards, id)
	if err != nil {
		return nil, err
	}
	return decodeCard(doc)
}

func (r *cardRepository) FindAvailable(ctx context.Context, provider string, value int64) (*model.Card, error) {
	docs, err := r.store.Query(ctx, ColCards, store.Query{
		Filters: []store.Filter{
			{Field: "provider", Op: "==", Value: provider},
			{Field: "value", Op: "==", Value: value},
			{Field: "used", Op: "==", Value: false},
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return decodeCard(docs[0])
}

func (r *cardRepository) GroupAvailable(ctx context.Context) ([]model.CardGroup, error) {
	docs, err := r.store.Query(ctx, ColCards, store.Query{
		Filters: []store.Filter{{Field: "used", Op: "==", Value: false}},
	})
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*model.CardGroup)
	var order []string
	for _, d := range docs {
		c, err := decodeCard(d)
		if err != nil {
			return nil, err
		}
		key := c.Provider + "::" + strconv.FormatInt(c.Value, 10)
		g, ok := byKey[key]
		if !ok {
			g = &model.CardGroup{Provider: c.Provider, Value: c.Value, PointsRequired: c.PointsRequired}
			byKey[key] = g
			order = append(order, key)
		}
		g.Count++
	}
	sort.Strings(order)
	groups := make([]model.CardGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	return groups, nil
}

func (r *cardRepository) Add(ctx context.Context, card *model.Card) (string, error) {
	return r.store.Add(ctx, ColCards, map[string]any{
		"provider":       card.Provider,
		"value":          card.Value,
		"pointsRequired": card.PointsRequired,
		"code":           card.Code,
		"serial":         card.Serial,
		"used":           false,
		"createdAt":      time.Now().UTC(),
	})
}

func (r *cardRepository) ListAll(ctx context.Context) ([]model.Card, error) {
	docs, err := r.store.Query(ctx, ColCards, store.Query{})
	if err != nil {
		return nil, err
	}
	cards := make([]model.Card, 0, len(docs))
	for _, d := range docs {
		c, err := decodeCard(d)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, nil
}

func (r *cardRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ColCards, id)
}

func decodeCard(doc store.Doc) (*model.Card, error) {
	var c model.Card
	if err := model.Decode(doc.Data, &c); err != nil {
		return nil, err
	}
	c.ID = doc.ID
	return &c, nil
}
