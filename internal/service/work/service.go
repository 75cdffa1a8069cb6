package work

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/sse"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
	shiftsvc "github.com/moura-tracker/timeclock/internal/service/shift"
)

// EventPublisher notifies an employee's live streams.
type EventPublisher interface {
	Publish(employeeID string, event sse.Event) int
}

type WorkServiceImpl struct {
	reader     workperiod.Reader
	writer     workperiod.Writer
	classifier *shiftsvc.Classifier
	events     EventPublisher
	now        func() time.Time
}

func NewWorkService(
	reader workperiod.Reader,
	writer workperiod.Writer,
	classifier *shiftsvc.Classifier,
	events EventPublisher,
) workperiod.WorkService {
	return &WorkServiceImpl{
		reader:     reader,
		writer:     writer,
		classifier: classifier,
		events:     events,
		now:        time.Now,
	}
}

func (s *WorkServiceImpl) CheckIn(ctx context.Context) (workperiod.PeriodResponse, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return workperiod.PeriodResponse{}, err
	}

	if _, err := s.reader.FindOpen(ctx, session.EmployeeID); err == nil {
		return workperiod.PeriodResponse{}, workperiod.ErrAlreadyCheckedIn
	} else if !errors.Is(err, workperiod.ErrNoOpenPeriod) {
		return workperiod.PeriodResponse{}, fmt.Errorf("failed to check open period: %w", err)
	}

	period, err := s.writer.CheckIn(ctx, session.EmployeeID)
	if err != nil {
		return workperiod.PeriodResponse{}, err
	}

	resp := workperiod.ToResponse(period)
	streams := s.events.Publish(session.EmployeeID, sse.Event{Event: sse.EventShiftOpened, Data: resp})
	slog.Info("Employee checked in", "employee_id", session.EmployeeID, "period_id", period.ID, "streams", streams)
	return resp, nil
}

func (s *WorkServiceImpl) CheckOut(ctx context.Context, req workperiod.CheckOutRequest) (workperiod.PeriodResponse, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return workperiod.PeriodResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return workperiod.PeriodResponse{}, err
	}

	period, err := s.writer.CheckOut(ctx, session.EmployeeID, workperiod.Reason(req.ReasonID), req.Details)
	if err != nil {
		return workperiod.PeriodResponse{}, err
	}
	if err := period.Anomaly(); err != nil {
		slog.Warn("Backend returned an inconsistent closed period", "employee_id", session.EmployeeID, "error", err)
	}

	resp := workperiod.ToResponse(period)
	streams := s.events.Publish(session.EmployeeID, sse.Event{Event: sse.EventShiftClosed, Data: resp})
	slog.Info("Employee checked out",
		"employee_id", session.EmployeeID,
		"period_id", period.ID,
		"reason", req.ReasonID,
		"streams", streams,
	)
	return resp, nil
}

// CurrentStatus reports whether the caller is working and today's running total.
func (s *WorkServiceImpl) CurrentStatus(ctx context.Context) (workperiod.StatusResponse, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return workperiod.StatusResponse{}, err
	}

	now := s.now()
	today := timecalc.DateOf(now.UTC())
	resp := workperiod.StatusResponse{
		Clock:         timecalc.MustClock(0),
		TargetMinutes: s.classifier.Config().TargetMinutes(),
	}

	todays, err := s.reader.ListRange(ctx, session.EmployeeID, today, today)
	if err != nil {
		return workperiod.StatusResponse{}, fmt.Errorf("failed to load today's periods: %w", err)
	}
	resp.TodayTotalSeconds = shiftsvc.DailyTotals(todays)[today.String()]

	open, err := s.reader.FindOpen(ctx, session.EmployeeID)
	switch {
	case err == nil:
		period := workperiod.ToResponse(open)
		resp.Working = true
		resp.Period = &period
		resp.ElapsedSeconds = timecalc.ElapsedSecondsAt(open.Date, open.CheckIn, now)
		resp.Clock = timecalc.MustClock(resp.ElapsedSeconds)
		resp.TodayTotalSeconds += resp.ElapsedSeconds
		if badge, ok := s.classifier.ClassifyAt(open, now); ok {
			resp.Classification = &badge
		}
	case errors.Is(err, workperiod.ErrNoOpenPeriod):
	default:
		return workperiod.StatusResponse{}, fmt.Errorf("failed to load open period: %w", err)
	}

	resp.TodayTotal = timecalc.MustClock(resp.TodayTotalSeconds)
	return resp, nil
}

func (s *WorkServiceImpl) ShiftConfig(ctx context.Context) workperiod.ShiftConfigResponse {
	cfg := s.classifier.Config()
	label, _ := timecalc.FormatMinutesToLabel(cfg.TargetMinutes())
	return workperiod.ShiftConfigResponse{
		TargetMinutes:    cfg.TargetMinutes(),
		TargetSeconds:    cfg.TargetSeconds(),
		TargetLabel:      label,
		ToleranceSeconds: shift.ToleranceSeconds,
		Reasons:          workperiod.ReasonOptions(),
	}
}

// OpenPeriod returns the caller's open period for live watching.
func (s *WorkServiceImpl) OpenPeriod(ctx context.Context) (workperiod.WorkPeriod, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return workperiod.WorkPeriod{}, err
	}
	return s.reader.FindOpen(ctx, session.EmployeeID)
}
