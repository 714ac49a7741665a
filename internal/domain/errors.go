package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The engine maps these to the plain-text transaction messages.
var (
	ErrStockNotFound      = errors.New("stock_not_found")
	ErrStockAlreadyExists = errors.New("stock_already_exists")
	ErrStockRetired       = errors.New("stock_retired")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrBalanceOverflow    = errors.New("balance_overflow")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets callers match any validation failure with
// errors.Is(err, ErrInvalidRequest).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}
