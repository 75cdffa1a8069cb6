package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/handler/http/response"
	"github.com/moura-tracker/timeclock/internal/pkg/sse"
	shiftService "github.com/moura-tracker/timeclock/internal/service/shift"
)

const streamKeepAlive = 30 * time.Second

// streamRecheck is how often a stream re-reads the open period to catch a
// transition whose hub event it missed.
const streamRecheck = time.Minute

// Live stream event names besides the shift_* events relayed from the hub.
const (
	eventConnected = "connected"
	eventTick      = "tick"
	eventIdle      = "idle"
	eventPing      = "ping"
	eventError     = "error"
)

type WorkHandler interface {
	ShiftConfig(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

// StreamSubscriber hands out an employee's shift event feed.
type StreamSubscriber interface {
	Subscribe(employeeID string) (<-chan sse.Event, func())
}

type workHandlerImpl struct {
	workService workperiod.WorkService
	streams     StreamSubscriber
	watcher     *shiftService.Watcher
	recheck     time.Duration
}

type WorkHandlerOption func(*workHandlerImpl)

// WithStreamRecheck sets how often live streams re-read the open period.
func WithStreamRecheck(d time.Duration) WorkHandlerOption {
	return func(h *workHandlerImpl) {
		if d > 0 {
			h.recheck = d
		}
	}
}

func NewWorkHandler(workService workperiod.WorkService, streams StreamSubscriber, watcher *shiftService.Watcher, opts ...WorkHandlerOption) WorkHandler {
	h := &workHandlerImpl{
		workService: workService,
		streams:     streams,
		watcher:     watcher,
		recheck:     streamRecheck,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *workHandlerImpl) ShiftConfig(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.workService.ShiftConfig(r.Context()))
}

func (h *workHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.workService.CurrentStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

func (h *workHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	period, err := h.workService.CheckIn(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Shift started", period)
}

func (h *workHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req workperiod.CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CheckOut decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	period, err := h.workService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shift finished", period)
}

// Stream pushes the caller's live shift over SSE. While a period is open it emits
// a tick per interval; check-in and check-out made from any client switch the
// stream between watching and idle. Hub events drive the switch; a periodic
// re-read of the open period covers events the hub dropped.
func (h *workHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	session, err := auth.MustSession(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// Subscribe before the first state read so no transition is missed
	events, cleanup := h.streams.Subscribe(session.EmployeeID)
	defer cleanup()

	ctx := r.Context()
	send := func(event string, data interface{}) error {
		return writeEvent(w, flusher, event, data)
	}

	if err := send(eventConnected, map[string]string{"status": "connected", "employee_id": session.EmployeeID}); err != nil {
		return
	}

	keepalive := time.NewTicker(streamKeepAlive)
	defer keepalive.Stop()
	recheck := time.NewTicker(h.recheck)
	defer recheck.Stop()

	for {
		period, err := h.workService.OpenPeriod(ctx)
		switch {
		case err == nil:
			if err := h.watch(ctx, period, events, send); err != nil {
				return
			}
			continue
		case errors.Is(err, workperiod.ErrNoOpenPeriod):
			if err := send(eventIdle, map[string]bool{"working": false}); err != nil {
				return
			}
		default:
			if ctx.Err() == nil {
				slog.Error("Stream state lookup failed", "employee_id", session.EmployeeID, "error", err)
				_ = send(eventError, map[string]string{"message": "Could not load shift state"})
			}
			return
		}

	idle:
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := send(event.Event, event.Data); err != nil {
					return
				}
				if event.Event == sse.EventShiftOpened {
					break idle
				}

			case <-keepalive.C:
				if err := send(eventPing, map[string]int64{"timestamp": time.Now().Unix()}); err != nil {
					return
				}

			case <-recheck.C:
				if _, err := h.workService.OpenPeriod(ctx); err == nil {
					break idle
				}

			case <-ctx.Done():
				return
			}
		}
	}
}

// watch ticks period until a shift_closed event arrives for it or a re-read shows
// it is no longer the open period. A nil return means the period closed and the
// caller should re-read the state.
func (h *workHandlerImpl) watch(ctx context.Context, period workperiod.WorkPeriod, events <-chan sse.Event, send func(string, interface{}) error) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan struct{})
	done := make(chan struct{})
	var closed *sse.Event

	go func() {
		defer close(done)
		recheck := time.NewTicker(h.recheck)
		defer recheck.Stop()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					cancel()
					return
				}
				if event.Event == sse.EventShiftClosed {
					closed = &event
					close(stop)
					return
				}
			case <-recheck.C:
				current, err := h.workService.OpenPeriod(watchCtx)
				if errors.Is(err, workperiod.ErrNoOpenPeriod) || (err == nil && current.ID != period.ID) {
					slog.Debug("Stream period closed without event", "period_id", period.ID)
					close(stop)
					return
				}
			case <-watchCtx.Done():
				return
			}
		}
	}()

	err := h.watcher.Watch(watchCtx, period, stop, func(tick shift.Tick) error {
		return send(eventTick, tick)
	})
	cancel()
	<-done

	if err != nil {
		return err
	}
	if closed != nil {
		return send(closed.Event, closed.Data)
	}
	return nil
}

func writeEvent(w io.Writer, flusher http.Flusher, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
