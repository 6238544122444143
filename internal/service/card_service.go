package service

import (
	"context"
	"errors"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

type CardInput struct {
	Provider       string `json:"provider"`
	Value          int64  `json:"value"`
	PointsRequired int64  `json:"pointsRequired"`
	Code           string `json:"code"`
	Serial         string `json:"serial"`
}

type CardService interface {
	Add(ctx context.Context, in CardInput) (string, error)
	AddBulk(ctx context.Context, in []CardInput) ([]string, error)
	ListAll(ctx context.Context) ([]model.Card, error)
	// Delete removes a card from the pool; cards that were already redeemed
	// are kept for the audit trail.
	Delete(ctx context.Context, id string) error
}

type cardService struct {
	cards repository.CardRepository
}

func NewCardService(cards repository.CardRepository) CardService {
	return &cardService{cards: cards}
}

func (s *cardService) Add(ctx context.Context, in CardInput) (string, error) {
	if in.Provider == "" || in.Value <= 0 || in.PointsRequired <= 0 || in.Code == "" {
		return "", ErrInvalidPayload
	}
	return s.cards.Add(ctx, &model.Card{
		Provider:       in.Provider,
		Value:          in.Value,
		PointsRequired: in.PointsRequired,
		Code:           in.Code,
		Serial:         in.Serial,
	})
}

func (s *cardService) AddBulk(ctx context.Context, in []CardInput) ([]string, error) {
	if len(in) == 0 {
		return nil, ErrInvalidPayload
	}
	ids := make([]string, 0, len(in))
	for _, c := range in {
		id, err := s.Add(ctx, c)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *cardService) ListAll(ctx context.Context) ([]model.Card, error) {
	return s.cards.ListAll(ctx)
}

func (s *cardService) Delete(ctx context.Context, id string) error {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if card.Used {
		return ErrCardInUse
	}
	return s.cards.Delete(ctx, id)
}
