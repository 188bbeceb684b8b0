// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Validation errors
	ErrInvalidRange    = &Error{Code: "INVALID_RANGE", Message: "invalid backtest date range"}
	ErrStrategyInvalid = &Error{Code: "STRATEGY_INVALID", Message: "strategy definition invalid"}

	// Data errors
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrPriceUnavailable = &Error{Code: "PRICE_UNAVAILABLE", Message: "price unavailable"}
	ErrEventNotFound    = &Error{Code: "EVENT_NOT_FOUND", Message: "event not found"}

	// Persistence errors
	ErrRunNotFound      = &Error{Code: "RUN_NOT_FOUND", Message: "backtest run not found"}
	ErrStrategyNotFound = &Error{Code: "STRATEGY_NOT_FOUND", Message: "stored strategy not found"}
	ErrStorageFailed    = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Report errors
	ErrReportFailed = &Error{Code: "REPORT_FAILED", Message: "report generation failed"}
)
