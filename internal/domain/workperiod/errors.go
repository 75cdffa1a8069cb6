package workperiod

import "errors"

var (
	ErrInconsistentPeriod = errors.New("work period checkout and duration disagree")
	ErrNoOpenPeriod       = errors.New("there is no open shift to close")
	ErrAlreadyCheckedIn   = errors.New("a shift is already open")
	ErrInvalidReason      = errors.New("invalid checkout reason")
	ErrDetailsRequired    = errors.New("details are required when the reason is other")
	ErrPeriodNotFound     = errors.New("work period not found")
)
