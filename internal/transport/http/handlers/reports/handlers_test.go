package reportshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"chronos/internal/domain/auth"
	"chronos/internal/domain/reports"
	"chronos/internal/domain/tenant"
	"chronos/internal/transport/http/middleware"
)

const secret = "report-secret"

type fakeReports struct {
	companyID int64
	day       time.Time
	err       error
}

func (f *fakeReports) DailyReport(_ context.Context, companyID int64, day time.Time) (reports.Report, error) {
	f.companyID, f.day = companyID, day
	if f.err != nil {
		return reports.Report{}, f.err
	}
	in := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)
	return reports.Report{
		CompanyID:   companyID,
		CompanyName: "Acme",
		Date:        day.Format(time.DateOnly),
		Rows: []reports.Row{
			{EmployeeNumber: 101, EmployeeName: "Ada Lovelace", ClockIn: &in, ClockOut: &out, Breaks: 1, BreakMinutes: 30, WorkedMinutes: 510},
		},
	}, nil
}

func router(svc Service) http.Handler {
	h := NewHandler(svc, zap.NewNop(), time.UTC)
	h.Now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(middleware.Auth(auth.NewService(nil, secret, time.Hour, zap.NewNop())))
	r.Route("/api", h.RegisterRoutes)
	return r
}

func get(t *testing.T, h http.Handler, path, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		token, err := auth.GenerateToken(secret, auth.Claims{UserID: 1, Role: role}, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDailyReportRequiresSuperuser(t *testing.T) {
	h := router(&fakeReports{})
	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/api/company/4/attendance", "").Code)
	assert.Equal(t, http.StatusForbidden, get(t, h, "/api/company/4/attendance", "kiosk").Code)
}

func TestDailyReportJSON(t *testing.T) {
	svc := &fakeReports{}
	rec := get(t, router(svc), "/api/company/4/attendance", auth.RoleSuperAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), svc.companyID)
	assert.Equal(t, "2024-06-03", svc.day.Format(time.DateOnly))

	var body struct {
		Success bool           `json:"success"`
		Report  reports.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Report.Rows, 1)
	assert.Equal(t, 510, body.Report.Rows[0].WorkedMinutes)
}

func TestDailyReportFiles(t *testing.T) {
	h := router(&fakeReports{})

	rec := get(t, h, "/api/company/4/attendance?date=2024-06-01&format=pdf", auth.RoleSuperAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_4_2024-06-01.pdf")

	rec = get(t, h, "/api/company/4/attendance?date=2024-06-01&format=xlsx", auth.RoleSuperAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Employee #", rows[2][0])
	assert.Equal(t, "Ada Lovelace", rows[3][1])
}

func TestDailyReportValidation(t *testing.T) {
	h := router(&fakeReports{})
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/company/4/attendance?format=csv", auth.RoleSuperAdmin).Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/company/4/attendance?date=June", auth.RoleSuperAdmin).Code)
	assert.Equal(t, http.StatusNotFound, get(t, router(&fakeReports{err: tenant.ErrCompanyNotFound}), "/api/company/9/attendance", auth.RoleSuperAdmin).Code)
}
