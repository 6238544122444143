package service

import "errors"

// Sentinel errors shared across the services. Handlers switch on these to
// pick status codes and localized messages; the error text is the wire code.
var (
	ErrInvalidPayload     = errors.New("invalid_payload")
	ErrInvalidPoints      = errors.New("invalid_points")
	ErrNoCard             = errors.New("no_card")
	ErrCardNotFound       = errors.New("card_not_found")
	ErrCardAlreadyUsed    = errors.New("card_already_used")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInsufficientPoints = errors.New("insufficient_points")
	ErrSourceNotFound     = errors.New("source_not_found")
	ErrNotMerged          = errors.New("not_merged")
	ErrNotFound           = errors.New("not_found")
	ErrCardInUse          = errors.New("card_in_use")
)
