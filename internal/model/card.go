package model

import "time"

// Card is a prepaid top-up voucher in the cards collection. A card flips
// used=false -> true exactly once, by exactly one redemption.
type Card struct {
	ID             string    `mapstructure:"-"`
	Provider       string    `mapstructure:"provider"`
	Value          int64     `mapstructure:"value"`
	PointsRequired int64     `mapstructure:"pointsRequired"`
	Code           string    `mapstructure:"code"`
	Serial         string    `mapstructure:"serial"`
	Used           bool      `mapstructure:"used"`
	UsedBy         string    `mapstructure:"usedBy"`
	UsedAt         time.Time `mapstructure:"usedAt"`
	CreatedAt      time.Time `mapstructure:"createdAt"`
}

// CardGroup is one storefront offer: all unused cards sharing a provider and
// denomination.
type CardGroup struct {
	Provider       string `json:"provider"`
	Value          int64  `json:"value"`
	PointsRequired int64  `json:"pointsRequired"`
	Count          int    `json:"count"`
}
