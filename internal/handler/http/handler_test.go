package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moura-tracker/timeclock/internal/config"
	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/employee"
	"github.com/moura-tracker/timeclock/internal/domain/history"
	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/jwt"
	"github.com/moura-tracker/timeclock/internal/pkg/sse"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
	shiftService "github.com/moura-tracker/timeclock/internal/service/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakeAuthService struct {
	loginErr error
	loggedIn *auth.Session
}

func (f *fakeAuthService) Login(_ context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if f.loginErr != nil {
		return auth.LoginResponse{}, f.loginErr
	}
	return auth.LoginResponse{ID: "42", Email: req.Email, Role: auth.RoleUser, Token: "issued"}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context) error {
	s, err := auth.MustSession(ctx)
	f.loggedIn = &s
	return err
}

func (f *fakeAuthService) CurrentSession(ctx context.Context) (auth.SessionResponse, error) {
	s, err := auth.MustSession(ctx)
	if err != nil {
		return auth.SessionResponse{}, err
	}
	return auth.SessionResponse{EmployeeID: s.EmployeeID, Email: s.Email, Role: s.Role, IsAdmin: s.IsAdmin()}, nil
}

type fakeWorkService struct {
	mu         sync.Mutex
	open       *workperiod.WorkPeriod
	checkInErr error
}

func (f *fakeWorkService) setOpen(p *workperiod.WorkPeriod) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = p
}

func (f *fakeWorkService) CheckIn(context.Context) (workperiod.PeriodResponse, error) {
	if f.checkInErr != nil {
		return workperiod.PeriodResponse{}, f.checkInErr
	}
	return workperiod.PeriodResponse{ID: "p1", Date: "2026-01-16", CheckInTime: "08:00:00"}, nil
}

func (f *fakeWorkService) CheckOut(_ context.Context, req workperiod.CheckOutRequest) (workperiod.PeriodResponse, error) {
	return workperiod.PeriodResponse{ID: "p1", ReasonID: &req.ReasonID}, nil
}

func (f *fakeWorkService) CurrentStatus(context.Context) (workperiod.StatusResponse, error) {
	return workperiod.StatusResponse{Working: false, Clock: "00:00:00", TodayTotal: "00:00:00", TargetMinutes: 480}, nil
}

func (f *fakeWorkService) ShiftConfig(context.Context) workperiod.ShiftConfigResponse {
	return workperiod.ShiftConfigResponse{TargetMinutes: 480, Reasons: workperiod.ReasonOptions()}
}

func (f *fakeWorkService) OpenPeriod(context.Context) (workperiod.WorkPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open == nil {
		return workperiod.WorkPeriod{}, workperiod.ErrNoOpenPeriod
	}
	return *f.open, nil
}

type fakeHistoryService struct{}

func (fakeHistoryService) GetHistory(_ context.Context, filter history.HistoryFilter) (history.HistoryResponse, error) {
	return history.HistoryResponse{
		Rows:       []history.HistoryRow{{ID: "p1", Date: "2026-01-16", Duration: "08:00:00"}},
		TotalItems: 41,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (fakeHistoryService) GetDashboard(context.Context) (history.DashboardResponse, error) {
	return history.DashboardResponse{TargetMinutes: 480}, nil
}

func (fakeHistoryService) GetWeeklyChart(_ context.Context, date string) (shift.WeeklyChart, error) {
	if date == "bad" {
		return shift.WeeklyChart{}, history.ErrInvalidDate
	}
	return shift.WeeklyChart{}, nil
}

func (fakeHistoryService) GetMonthlyStats(context.Context, string) (shift.MonthlyStats, error) {
	return shift.MonthlyStats{Month: "2026-01"}, nil
}

func (fakeHistoryService) ExportHistoryPDF(context.Context, history.HistoryFilter) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "history-today.pdf", nil
}

type fakeAdminService struct{}

func (fakeAdminService) TeamStatus(context.Context) (employee.TeamStatusResponse, error) {
	return employee.TeamStatusResponse{Working: 1}, nil
}

func (fakeAdminService) ListEmployees(context.Context) ([]employee.EmployeeResponse, error) {
	return []employee.EmployeeResponse{{ID: "42", Name: "Ana"}}, nil
}

func (fakeAdminService) UpdateSchedule(_ context.Context, id string, req employee.UpdateScheduleRequest) (employee.ScheduleResponse, error) {
	if id == "404" {
		return employee.ScheduleResponse{}, employee.ErrEmployeeNotFound
	}
	return employee.ScheduleResponse{EmployeeID: id, WorkStartTime: req.WorkStartTime, WorkEndTime: req.WorkEndTime}, nil
}

func (fakeAdminService) GenerateReport(_ context.Context, req employee.ReportRequest) (employee.ReportResponse, error) {
	return employee.ReportResponse{EmployeeID: req.EmployeeID, StartDate: req.StartDate, EndDate: req.EndDate}, nil
}

func (fakeAdminService) ExportReportPDF(context.Context, employee.ReportRequest) ([]byte, string, error) {
	return []byte("%PDF-1.3"), "report.pdf", nil
}

func (fakeAdminService) Ranking(context.Context) ([]employee.RankingResponse, error) {
	return []employee.RankingResponse{{Position: 1, Name: "Ana", TotalHours: 40.5}}, nil
}

type testServer struct {
	router     http.Handler
	jwtService jwt.Service
	authSvc    *fakeAuthService
	workSvc    *fakeWorkService
	hub        *sse.Hub
}

func newTestServer(t *testing.T, opts ...WorkHandlerOption) *testServer {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "test", LogLevel: "error", CORSAllowedOrigins: []string{"*"}}}
	ts := &testServer{
		jwtService: jwt.NewJWTService(handlerTestSecret),
		authSvc:    &fakeAuthService{},
		workSvc:    &fakeWorkService{},
		hub:        sse.NewHub(),
	}
	watcher := shiftService.NewWatcher(shiftService.NewClassifier(shift.NewConfig(480)), 20*time.Millisecond)
	ts.router = NewRouter(cfg, ts.jwtService,
		NewAuthHandler(ts.authSvc),
		NewWorkHandler(ts.workSvc, ts.hub, watcher, opts...),
		NewHistoryHandler(fakeHistoryService{}),
		NewAdminHandler(fakeAdminService{}),
	)
	return ts
}

func (ts *testServer) token(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := ts.jwtService.GenerateToken("42", "ana@moura.com", role, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/auth/login", "", []byte(`{"email":"ana@moura.com","password":"secret"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"token":"issued"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/auth/login", "", []byte(`{`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/auth/login", "", []byte(`{"email":"nope"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env := decode(t, rec)
		assert.Contains(t, env.Error.Details, "email")
		assert.Contains(t, env.Error.Details, "password")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		ts.authSvc.loginErr = auth.ErrInvalidCredentials
		defer func() { ts.authSvc.loginErr = nil }()
		rec := ts.do(http.MethodPost, "/api/v1/auth/login", "", []byte(`{"email":"ana@moura.com","password":"wrong"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/auth/session", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := jwt.NewJWTService("another-secret").GenerateToken("42", "ana@moura.com", auth.RoleUser, time.Hour)
		require.NoError(t, err)
		rec := ts.do(http.MethodGet, "/api/v1/auth/session", other, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/auth/session", ts.token(t, auth.RoleAdmin), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(decode(t, rec).Data), `"is_admin":true`)
	})

	t.Run("revoked token", func(t *testing.T) {
		token, err := ts.jwtService.GenerateToken("43", "bruno@moura.com", auth.RoleUser, time.Hour)
		require.NoError(t, err)
		ts.jwtService.RevokeToken(token, time.Now().Add(time.Hour))
		rec := ts.do(http.MethodGet, "/api/v1/auth/session", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout sees the session", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/auth/logout", ts.token(t, auth.RoleUser), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, ts.authSvc.loggedIn)
		assert.Equal(t, "42", ts.authSvc.loggedIn.EmployeeID)
	})
}

func TestAdminOnly(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/admin/ranking", ts.token(t, auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/admin/ranking", ts.token(t, auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminHandlers(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, auth.RoleAdmin)

	t.Run("update schedule", func(t *testing.T) {
		rec := ts.do(http.MethodPut, "/api/v1/admin/employees/42/schedule", admin, []byte(`{"work_start_time":"08:00","work_end_time":"17:00"}`))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = ts.do(http.MethodPut, "/api/v1/admin/employees/42/schedule", admin, []byte(`{"work_start_time":"18:00","work_end_time":"17:00"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = ts.do(http.MethodPut, "/api/v1/admin/employees/404/schedule", admin, []byte(`{"work_start_time":"08:00","work_end_time":"17:00"}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("report validation", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/admin/report?employee_id=42&start_date=2026-02-01&end_date=2026-01-01", admin, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec).Error.Details, "end_date")
	})

	t.Run("report pdf", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/admin/report/pdf?employee_id=42&start_date=2026-01-01&end_date=2026-01-31", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.pdf")
	})
}

func TestWorkHandlers(t *testing.T) {
	ts := newTestServer(t)
	user := ts.token(t, auth.RoleUser)

	t.Run("check in", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/me/check-in", user, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("check in twice", func(t *testing.T) {
		ts.workSvc.checkInErr = workperiod.ErrAlreadyCheckedIn
		defer func() { ts.workSvc.checkInErr = nil }()
		rec := ts.do(http.MethodPost, "/api/v1/me/check-in", user, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("check out other without details", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/me/check-out", user, []byte(`{"reason_id":"other"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec).Error.Details, "details")
	})

	t.Run("check out", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/me/check-out", user, []byte(`{"reason_id":"LUNCH_START"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(decode(t, rec).Data), `"reason_id":"lunch_start"`)
	})
}

func TestHistoryHandlers(t *testing.T) {
	ts := newTestServer(t)
	user := ts.token(t, auth.RoleUser)

	t.Run("list carries pagination meta", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/me/history?page=2&limit=20", user, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 2, env.Meta.Page)
		assert.Equal(t, int64(41), env.Meta.TotalItems)
		assert.Equal(t, 3, env.Meta.TotalPages)
	})

	t.Run("bad date filter", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/me/history?date=16/01/2026", user, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("weekly bad date", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/me/weekly?date=bad", user, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("pdf", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/me/history/pdf", user, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "%PDF-1.3", rec.Body.String())
	})
}

type sseEvent struct {
	name string
	data string
}

func readEvents(body *bufio.Reader, out chan<- sseEvent) {
	defer close(out)
	var ev sseEvent
	for {
		line, err := body.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			out <- ev
			ev = sseEvent{}
		}
	}
}

// awaitEvent skips events until one named name arrives.
func awaitEvent(t *testing.T, events <-chan sseEvent, name string) sseEvent {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "stream ended before %s", name)
			if ev.name == name {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", name)
		}
	}
}

func TestStream_FollowsShiftTransitions(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.router)
	defer server.Close()

	start := time.Now().UTC().Add(-time.Hour)
	period := workperiod.WorkPeriod{
		ID:         "p1",
		EmployeeID: "42",
		Date:       timecalc.DateOf(start),
		CheckIn:    timecalc.TimeOfDayOf(start),
	}
	ts.workSvc.setOpen(&period)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/me/stream?jwt="+ts.token(t, auth.RoleUser), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan sseEvent, 64)
	go readEvents(bufio.NewReader(resp.Body), events)

	awaitEvent(t, events, eventConnected)
	tick := awaitEvent(t, events, eventTick)
	var decoded shift.Tick
	require.NoError(t, json.Unmarshal([]byte(tick.data), &decoded))
	assert.Equal(t, "p1", decoded.PeriodID)
	assert.GreaterOrEqual(t, decoded.ElapsedSeconds, int64(3600))

	ts.workSvc.setOpen(nil)
	ts.hub.Publish("42", sse.Event{Event: sse.EventShiftClosed, Data: map[string]string{"id": "p1"}})
	awaitEvent(t, events, sse.EventShiftClosed)
	awaitEvent(t, events, eventIdle)

	ts.workSvc.setOpen(&period)
	ts.hub.Publish("42", sse.Event{Event: sse.EventShiftOpened, Data: map[string]string{"id": "p1"}})
	awaitEvent(t, events, sse.EventShiftOpened)
	awaitEvent(t, events, eventTick)
}

func TestStream_RecoversFromMissedEvents(t *testing.T) {
	ts := newTestServer(t, WithStreamRecheck(30*time.Millisecond))
	server := httptest.NewServer(ts.router)
	defer server.Close()

	start := time.Now().UTC().Add(-time.Hour)
	period := workperiod.WorkPeriod{
		ID:         "p1",
		EmployeeID: "42",
		Date:       timecalc.DateOf(start),
		CheckIn:    timecalc.TimeOfDayOf(start),
	}
	ts.workSvc.setOpen(&period)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/me/stream?jwt="+ts.token(t, auth.RoleUser), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	events := make(chan sseEvent, 256)
	go readEvents(bufio.NewReader(resp.Body), events)
	awaitEvent(t, events, eventTick)

	// Closed and reopened with no hub event, as when a full buffer drops it.
	ts.workSvc.setOpen(nil)
	awaitEvent(t, events, eventIdle)

	ts.workSvc.setOpen(&period)
	awaitEvent(t, events, eventTick)
}

func TestStream_RequiresToken(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/v1/me/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
