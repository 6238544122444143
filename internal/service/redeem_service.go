package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

type RedeemRequest struct {
	Provider       string `json:"provider"`
	Value          int64  `json:"value"`
	PointsRequired int64  `json:"pointsRequired"`
	UserID         string `json:"userId"`
}

type RedeemResult struct {
	Code           string `json:"code"`
	Serial         string `json:"serial"`
	CardID         string `json:"cardId"`
	Provider       string `json:"provider"`
	Value          int64  `json:"value"`
	PointsDeducted int64  `json:"pointsDeducted"`
}

type RedeemService interface {
	// Redeem exchanges points for one card: the candidate card is picked by a
	// point-in-time query, then re-validated and claimed inside a single
	// store transaction together with the balance debit.
	Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error)
	Catalog(ctx context.Context) ([]model.CardGroup, error)
	History(ctx context.Context, limit int) ([]model.Redeem, error)
}

type redeemService struct {
	store   store.Store
	cards   repository.CardRepository
	redeems repository.RedeemRepository
}

func NewRedeemService(s store.Store, cards repository.CardRepository, redeems repository.RedeemRepository) RedeemService {
	return &redeemService{store: s, cards: cards, redeems: redeems}
}

func (s *redeemService) Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	if req.Provider == "" || req.Value == 0 || req.UserID == "" {
		return nil, ErrInvalidPayload
	}
	if req.PointsRequired < 0 {
		return nil, ErrInvalidPoints
	}

	card, err := s.cards.FindAvailable(ctx, req.Provider, req.Value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoCard
		}
		return nil, err
	}

	var result RedeemResult
	err = s.store.RunTransaction(ctx, func(tx store.Tx) error {
		// The outer query is a snapshot; only an in-transaction read of the
		// picked card proves it is still unclaimed at commit time.
		cardDoc, err := tx.Get(repository.ColCards, card.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCardNotFound
			}
			return err
		}
		if used, _ := cardDoc.Data["used"].(bool); used {
			return ErrCardAlreadyUsed
		}

		userDoc, err := tx.Get(repository.ColUsers, req.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		balance := model.Int(userDoc.Data["greenPoints"])
		if balance < req.PointsRequired {
			return ErrInsufficientPoints
		}

		now := time.Now().UTC()
		// Debit first, then claim; the transaction commits both or neither.
		if err := tx.Update(repository.ColUsers, req.UserID, map[string]any{
			"greenPoints":           balance - req.PointsRequired,
			"lastGreenPointsUpdate": now,
		}); err != nil {
			return err
		}
		if err := tx.Update(repository.ColCards, card.ID, map[string]any{
			"used":   true,
			"usedBy": req.UserID,
			"usedAt": now,
		}); err != nil {
			return err
		}

		result = RedeemResult{
			Code:           model.Str(cardDoc.Data["code"]),
			Serial:         model.Str(cardDoc.Data["serial"]),
			CardID:         card.ID,
			Provider:       model.Str(cardDoc.Data["provider"]),
			Value:          model.Int(cardDoc.Data["value"]),
			PointsDeducted: req.PointsRequired,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Advisory audit trail; a write failure here must not undo the redemption.
	if _, err := s.redeems.Add(ctx, &model.Redeem{
		Provider:   req.Provider,
		Value:      req.Value,
		CardID:     result.CardID,
		Code:       result.Code,
		Serial:     result.Serial,
		UserID:     req.UserID,
		PointsUsed: req.PointsRequired,
		Status:     "Thành công",
	}); err != nil {
		log.Printf("failed to save redeem history: %v", err)
	}

	return &result, nil
}

func (s *redeemService) Catalog(ctx context.Context) ([]model.CardGroup, error) {
	return s.cards.GroupAvailable(ctx)
}

func (s *redeemService) History(ctx context.Context, limit int) ([]model.Redeem, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.redeems.ListRecent(ctx, limit)
}
