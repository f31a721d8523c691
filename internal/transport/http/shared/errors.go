package shared

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chronos/internal/domain/attendance"
	"chronos/internal/domain/auth"
	"chronos/internal/domain/employee"
	"chronos/internal/domain/face"
	"chronos/internal/domain/tenant"
	"chronos/internal/platform/db"
	"chronos/internal/transport/http/api"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorTable is checked in order with errors.Is.
var errorTable = []errorMapping{
	{attendance.ErrUnknownAction, http.StatusBadRequest, "unknown_action", "Unknown action"},
	{attendance.ErrNoPhotos, http.StatusBadRequest, "validation_error", "No files uploaded"},
	{attendance.ErrTooManyPhotos, http.StatusBadRequest, "validation_error", "At most 10 photos per upload"},
	{face.ErrInvalidImage, http.StatusBadRequest, "invalid_image", "Image is not a valid base64 picture"},
	{tenant.ErrOutletRequired, http.StatusBadRequest, "outlet_required", "outletId is required for companies with outlets"},

	{attendance.ErrAlreadyClockedIn, http.StatusBadRequest, "already_clocked_in", "Must clock out before clocking back in"},
	{attendance.ErrNoOpenShift, http.StatusBadRequest, "no_open_shift", "No open shift to clock out from"},
	{attendance.ErrMustEndBreakFirst, http.StatusBadRequest, "must_end_break_first", "Must end break before clocking out"},
	{attendance.ErrNoAvailableBreakSlots, http.StatusBadRequest, "no_available_break_slots", "No available break slots"},

	{employee.ErrInvalidPin, http.StatusUnauthorized, "invalid_pin", "Invalid PIN"},
	{auth.ErrInvalidPassword, http.StatusUnauthorized, "invalid_password", "Invalid password"},

	{employee.ErrNotInCompany, http.StatusForbidden, "employee_not_in_company", "Employee not found in this company"},
	{employee.ErrInactive, http.StatusForbidden, "employee_inactive", "Employee is inactive"},
	{tenant.ErrDeviceInactive, http.StatusForbidden, "device_inactive", "Device is inactive"},

	{tenant.ErrDeviceNotFound, http.StatusNotFound, "device_not_found", "Device not found"},
	{tenant.ErrCompanyNotFound, http.StatusNotFound, "company_not_found", "Company not found"},
	{tenant.ErrOutletNotFound, http.StatusNotFound, "outlet_not_found", "Outlet not found for this company"},
	{employee.ErrNotFound, http.StatusNotFound, "employee_not_found", "Employee not found"},
	{attendance.ErrNoShiftRecord, http.StatusNotFound, "no_shift_record", "No shift record for today"},
	{attendance.ErrRecordNotFound, http.StatusNotFound, "record_not_found", "Time record not found"},
	{face.ErrNoFaceData, http.StatusNotFound, "no_face_data", "No face data found for company"},
	{auth.ErrNoSuperuser, http.StatusNotFound, "superuser_not_found", "Superuser not found"},

	{tenant.ErrDeviceAlreadyRegistered, http.StatusConflict, "device_already_registered", "Device already registered"},

	{face.ErrEmbeddingServiceUnavailable, http.StatusBadGateway, "embedding_service_unavailable", "Failed to fetch embeddings"},
	{db.ErrUnavailable, http.StatusInternalServerError, "store_unavailable", "Service temporarily unavailable, retry"},
}

// Status reports the HTTP status and machine code err maps to.
func Status(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// WriteError maps a domain error to its response. Unmapped errors are logged
// and reported as internal errors without their text.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error, requestID string) {
	for _, m := range errorTable {
		if !errors.Is(err, m.err) {
			continue
		}
		var details api.Payload
		var already *tenant.AlreadyRegisteredError
		if errors.As(err, &already) {
			details = api.Payload{"deviceId": already.DeviceID}
		}
		if m.status >= http.StatusInternalServerError {
			logger.Warn("request failed", zap.String("request_id", requestID), zap.String("code", m.code), zap.Error(err))
		}
		api.FailWithDetails(w, m.status, m.code, m.message, details, requestID)
		return
	}
	logger.Error("unhandled error", zap.String("request_id", requestID), zap.Error(err))
	api.Fail(w, http.StatusInternalServerError, "internal_error", "Server error", requestID)
}
