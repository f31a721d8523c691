package facehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chronos/internal/domain/employee"
	"chronos/internal/domain/face"
	"chronos/internal/domain/tenant"
)

type fakeFaces struct {
	uploadErr  error
	faces      []face.TrainingFace
	facesErr   error
	sync       face.SyncResult
	syncDevice string
	embeddings json.RawMessage
	embedErr   error
}

func (f *fakeFaces) Upload(context.Context, int64, int64, string) (int64, error) {
	return 77, f.uploadErr
}

func (f *fakeFaces) TrainingFaces(context.Context, string) ([]face.TrainingFace, error) {
	return f.faces, f.facesErr
}

func (f *fakeFaces) SyncForDevice(_ context.Context, deviceUUID string) (face.SyncResult, error) {
	f.syncDevice = deviceUUID
	return f.sync, nil
}

func (f *fakeFaces) Embeddings(context.Context, string) (json.RawMessage, error) {
	return f.embeddings, f.embedErr
}

func serve(svc Service, method, path, body string) *httptest.ResponseRecorder {
	h := NewHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	h.RegisterSyncRoute(r)
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpload(t *testing.T) {
	rec := serve(&fakeFaces{}, http.MethodPost, "/api/face/upload", `{"employeeNumber":5,"companyId":2,"imageBase64":"aGk="}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"faceId":77`)

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "missing image", body: `{"employeeNumber":5,"companyId":2}`, status: http.StatusBadRequest},
		{name: "bad image", body: `{"employeeNumber":5,"companyId":2,"imageBase64":"!!"}`, err: face.ErrInvalidImage, status: http.StatusBadRequest},
		{name: "unknown employee", body: `{"employeeNumber":5,"companyId":2,"imageBase64":"aGk="}`, err: employee.ErrNotFound, status: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(&fakeFaces{uploadErr: tc.err}, http.MethodPost, "/api/face/upload", tc.body)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestTrainingData(t *testing.T) {
	svc := &fakeFaces{faces: []face.TrainingFace{{Name: "101", ImageBase64: "aGk="}}}
	rec := serve(svc, http.MethodPost, "/api/face/training-data", `{"deviceUUID":"dev"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success      bool                `json:"success"`
		TrainingData []face.TrainingFace `json:"trainingData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, svc.faces, body.TrainingData)

	rec = serve(&fakeFaces{facesErr: face.ErrNoFaceData}, http.MethodPost, "/api/face/training-data", `{"deviceUUID":"dev"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmbeddings(t *testing.T) {
	rec := serve(&fakeFaces{embeddings: json.RawMessage(`{"embeddings":[[0.1,0.2]]}`)}, http.MethodGet, "/api/face/embeddings?deviceUUID=dev", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"embeddings":[[0.1,0.2]]}`, rec.Body.String())

	rec = serve(&fakeFaces{}, http.MethodGet, "/api/face/embeddings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(&fakeFaces{embedErr: fmt.Errorf("%w: status 500", face.ErrEmbeddingServiceUnavailable)}, http.MethodGet, "/api/face/embeddings?deviceUUID=dev", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = serve(&fakeFaces{embedErr: tenant.ErrDeviceNotFound}, http.MethodGet, "/api/face/embeddings?deviceUUID=dev", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncImages(t *testing.T) {
	svc := &fakeFaces{sync: face.SyncResult{CompanyID: 2, Count: 3, Skipped: 1}}
	rec := serve(svc, http.MethodGet, "/sync-images/DEV-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DEV-1", svc.syncDevice)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body["count"])
	assert.Equal(t, "Synced 3 face image(s) for company 2", body["message"])
}
