package domain

import "errors"

var (
	ErrNoRecord       = errors.New("no relay record stored")
	ErrInvalidPayload = errors.New("payload must be a JSON object")
)
