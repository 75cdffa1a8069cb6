package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrInvalidDateRange  = errors.New("start date must not be after end date")
	ErrReportRangeTooBig = errors.New("report range must not exceed 366 days")
)
