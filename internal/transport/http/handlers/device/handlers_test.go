package devicehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chronos/internal/domain/tenant"
)

type fakeTenants struct {
	registered  tenant.RegisterInput
	registerErr error
	pinUUID     string
	pinID       int64
	pinErr      error
	company     tenant.Company
	companyErr  error
}

func (f *fakeTenants) RegisterDevice(_ context.Context, in tenant.RegisterInput) (tenant.Registration, error) {
	f.registered = in
	if f.registerErr != nil {
		return tenant.Registration{}, f.registerErr
	}
	reg := tenant.Registration{DeviceID: 31, DeviceUUID: "generated", Company: tenant.Company{ID: in.CompanyID, Name: "Acme"}}
	if in.OutletID != nil {
		reg.Outlet = &tenant.Outlet{ID: *in.OutletID, CompanyID: in.CompanyID, Name: "Front"}
	}
	return reg, nil
}

func (f *fakeTenants) PinRequired(_ context.Context, uuid string, id int64) (bool, error) {
	f.pinUUID, f.pinID = uuid, id
	return true, f.pinErr
}

func (f *fakeTenants) GetCompany(context.Context, int64) (tenant.Company, error) {
	return f.company, f.companyErr
}

func serve(svc Service, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	r := chi.NewRouter()
	r.Route("/api", NewHandler(svc, zap.NewNop()).RegisterRoutes)
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRegister(t *testing.T) {
	svc := &fakeTenants{}
	rec, body := serve(svc, http.MethodPost, "/api/device/register", `{"companyId":"4","outletId":9,"deviceName":"Front desk"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), svc.registered.CompanyID)
	require.NotNil(t, svc.registered.OutletID)
	assert.Equal(t, int64(9), *svc.registered.OutletID)
	assert.EqualValues(t, 31, body["deviceId"])
	assert.Equal(t, "generated", body["deviceUUID"])
	assert.NotNil(t, body["outlet"])
}

func TestRegisterWithoutOutlet(t *testing.T) {
	svc := &fakeTenants{}
	rec, body := serve(svc, http.MethodPost, "/api/device/register", `{"companyId":4,"outletId":null,"deviceName":"Back"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.registered.OutletID)
	v, ok := body["outlet"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "missing name", body: `{"companyId":4}`, status: http.StatusBadRequest, code: "validation_error"},
		{name: "bad company", body: `{"companyId":"acme","deviceName":"x"}`, status: http.StatusBadRequest, code: "validation_error"},
		{name: "duplicate", body: `{"companyId":4,"deviceName":"x","deviceUUID":"u"}`, err: &tenant.AlreadyRegisteredError{DeviceID: 3}, status: http.StatusConflict, code: "device_already_registered"},
		{name: "outlet required", body: `{"companyId":4,"deviceName":"x"}`, err: tenant.ErrOutletRequired, status: http.StatusBadRequest, code: "outlet_required"},
		{name: "outlet foreign", body: `{"companyId":4,"outletId":2,"deviceName":"x"}`, err: tenant.ErrOutletNotFound, status: http.StatusNotFound, code: "outlet_not_found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := serve(&fakeTenants{registerErr: tc.err}, http.MethodPost, "/api/device/register", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestPinRequired(t *testing.T) {
	svc := &fakeTenants{}
	rec, body := serve(svc, http.MethodPost, "/api/device/pin-required", `{"deviceId":"17"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["pinRequired"])
	assert.Equal(t, int64(17), svc.pinID)

	rec, _ = serve(svc, http.MethodPost, "/api/device/pin-required", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(&fakeTenants{pinErr: tenant.ErrDeviceNotFound}, http.MethodPost, "/api/device/pin-required", `{"deviceUUID":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompany(t *testing.T) {
	rec, body := serve(&fakeTenants{company: tenant.Company{ID: 4, Name: "Acme", Active: true}}, http.MethodGet, "/api/company/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", body["company"].(map[string]any)["name"])

	rec, _ = serve(&fakeTenants{companyErr: tenant.ErrCompanyNotFound}, http.MethodGet, "/api/company/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(&fakeTenants{}, http.MethodGet, "/api/company/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
