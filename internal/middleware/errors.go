package middleware

import "errors"

var (
	ErrEmptyQuery         = errors.New("query must not be empty")
	ErrMissingUserID      = errors.New("user_id is required")
	ErrInvalidMaxTokens   = errors.New("max_tokens must be between 0 and 100000")
	ErrInvalidTemperature = errors.New("temperature must be between 0.0 and 1.0")
	ErrInvalidSecurity    = errors.New("max_security_tier must not be negative")
)
