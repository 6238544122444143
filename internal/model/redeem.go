package model

import "time"

// Redeem is an append-only audit record linking a user, a card, and the
// points spent. Never mutated after creation.
type Redeem struct {
	ID         string    `mapstructure:"-"`
	Provider   string    `mapstructure:"provider"`
	Value      int64     `mapstructure:"value"`
	CardID     string    `mapstructure:"cardId"`
	Code       string    `mapstructure:"code"`
	Serial     string    `mapstructure:"serial"`
	UserID     string    `mapstructure:"userId"`
	PointsUsed int64     `mapstructure:"pointsUsed"`
	Status     string    `mapstructure:"status"`
	CreatedAt  time.Time `mapstructure:"createdAt"`
}
