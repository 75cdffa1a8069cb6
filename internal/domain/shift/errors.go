package shift

import "errors"

var (
	ErrPeriodClosed = errors.New("work period is already closed")
	ErrEmitFailed   = errors.New("failed to emit tick")
)
