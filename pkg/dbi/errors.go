package dbi

import "errors"

var (
	ErrEmptyBaseURL    = errors.New("base url is not set")
	ErrInvalidEnvelope = errors.New("invalid response envelope")
)
