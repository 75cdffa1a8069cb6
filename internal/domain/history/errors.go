package history

import "errors"

var (
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMonth = errors.New("month must be in YYYY-MM format")
)
