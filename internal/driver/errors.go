package driver

import "errors"

// Protocol errors. Transport errors from the channel are wrapped unchanged.
var (
	ErrInvalidPassword    = errors.New("password must be 0 to 6 digits")
	ErrHandshakeFailed    = errors.New("could not initialize with password")
	ErrReadHeaderMismatch = errors.New("could not read config header")
	ErrIncompleteRead     = errors.New("incomplete config data")
	ErrWriteFailed        = errors.New("write failed")
)
