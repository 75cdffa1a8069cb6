package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/backend"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

type workPeriodRepositoryImpl struct {
	client *backend.Client
}

// WorkPeriodRepository reads and writes work periods through the backend API.
type WorkPeriodRepository interface {
	workperiod.Reader
	workperiod.Writer
}

func NewWorkPeriodRepository(client *backend.Client) WorkPeriodRepository {
	return &workPeriodRepositoryImpl{client: client}
}

func employeeQuery(employeeID string) url.Values {
	q := url.Values{}
	q.Set("employeeId", employeeID)
	return q
}

// history loads the employee's full history, newest first. The backend answers with
// either a bare list or a page object.
func (r *workPeriodRepositoryImpl) history(ctx context.Context, employeeID string) ([]workperiod.WorkPeriod, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, "/work/my-history", employeeQuery(employeeID), &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch work history: %w", err)
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, err
	}

	periods := make([]workperiod.WorkPeriod, 0, len(records))
	for _, rec := range records {
		p, err := rec.toEntity(employeeID)
		if err != nil {
			slog.Warn("Skipping malformed work record", "employee_id", employeeID, "error", err)
			continue
		}
		periods = append(periods, p)
	}

	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].StartedAt().After(periods[j].StartedAt())
	})
	return periods, nil
}

func decodeRecords(raw json.RawMessage) ([]workRecordDTO, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []workRecordDTO
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var page pageDTO
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode work history: %w", err)
	}
	return page.Content, nil
}

func (r *workPeriodRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, filter workperiod.Filter) ([]workperiod.WorkPeriod, int64, error) {
	all, err := r.history(ctx, employeeID)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]workperiod.WorkPeriod, 0, len(all))
	for _, p := range all {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}

	total := int64(len(matched))
	if filter.Limit <= 0 {
		return matched, total, nil
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * filter.Limit
	if offset >= len(matched) {
		return []workperiod.WorkPeriod{}, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func matchesFilter(p workperiod.WorkPeriod, f workperiod.Filter) bool {
	if f.Date != nil && p.Date != *f.Date {
		return false
	}
	if f.StartDate != nil && p.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && f.EndDate.Before(p.Date) {
		return false
	}
	return true
}

func (r *workPeriodRepositoryImpl) ListRange(ctx context.Context, employeeID string, start, end timecalc.Date) ([]workperiod.WorkPeriod, error) {
	periods, _, err := r.ListByEmployee(ctx, employeeID, workperiod.Filter{StartDate: &start, EndDate: &end})
	return periods, err
}

func (r *workPeriodRepositoryImpl) FindOpen(ctx context.Context, employeeID string) (workperiod.WorkPeriod, error) {
	all, err := r.history(ctx, employeeID)
	if err != nil {
		return workperiod.WorkPeriod{}, err
	}
	for _, p := range all {
		if p.IsOpen() {
			return p, nil
		}
	}
	return workperiod.WorkPeriod{}, workperiod.ErrNoOpenPeriod
}

func (r *workPeriodRepositoryImpl) CheckIn(ctx context.Context, employeeID string) (workperiod.WorkPeriod, error) {
	var rec *workRecordDTO
	if err := r.client.Post(ctx, "/work/checkin", employeeQuery(employeeID), nil, &rec); err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return workperiod.WorkPeriod{}, fmt.Errorf("%w: %w", workperiod.ErrAlreadyCheckedIn, err)
		}
		return workperiod.WorkPeriod{}, fmt.Errorf("failed to check in: %w", err)
	}

	if rec != nil {
		if p, err := rec.toEntity(employeeID); err == nil {
			return p, nil
		}
	}
	return r.FindOpen(ctx, employeeID)
}

func (r *workPeriodRepositoryImpl) CheckOut(ctx context.Context, employeeID string, reason workperiod.Reason, details string) (workperiod.WorkPeriod, error) {
	body := checkOutBody{ReasonID: string(reason), Details: details}

	var rec *workRecordDTO
	if err := r.client.Post(ctx, "/work/checkout", employeeQuery(employeeID), body, &rec); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return workperiod.WorkPeriod{}, fmt.Errorf("%w: %w", workperiod.ErrNoOpenPeriod, err)
		}
		return workperiod.WorkPeriod{}, fmt.Errorf("failed to check out: %w", err)
	}

	if rec != nil {
		if p, err := rec.toEntity(employeeID); err == nil {
			return p, nil
		}
	}

	// The backend answers a checkout without data; the closed period is the newest one.
	all, err := r.history(ctx, employeeID)
	if err != nil {
		return workperiod.WorkPeriod{}, err
	}
	if len(all) == 0 {
		return workperiod.WorkPeriod{}, workperiod.ErrPeriodNotFound
	}
	return all[0], nil
}
