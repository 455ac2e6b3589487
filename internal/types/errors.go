package types

import "errors"

// Contract violations at the gateway's API boundary. These are the only
// errors the domain services return; degraded upstreams resolve to fallback data.
var (
	ErrInvalidSymbol = errors.New("symbol must not be empty")
	ErrInvalidDays   = errors.New("days must be between 1 and 365")
	ErrInvalidLimit  = errors.New("limit must be between 1 and 100")
	ErrEmptyText     = errors.New("text must not be empty")
)

const (
	MaxHistoryDays = 365
	MaxNewsLimit   = 100
)

// IsContractViolation reports whether err is a caller error
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrInvalidSymbol) ||
		errors.Is(err, ErrInvalidDays) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, ErrEmptyText)
}

// ValidateSymbol checks a trading symbol
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return ErrInvalidSymbol
	}
	return nil
}

// ValidateDays checks a history window
func ValidateDays(days int) error {
	if days < 1 || days > MaxHistoryDays {
		return ErrInvalidDays
	}
	return nil
}

// ValidateLimit checks a news batch size
func ValidateLimit(limit int) error {
	if limit < 1 || limit > MaxNewsLimit {
		return ErrInvalidLimit
	}
	return nil
}
