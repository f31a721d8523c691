package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Payload holds the top-level keys written next to "success".
type Payload map[string]any

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("write json failed", zap.Error(err))
	}
}

func respond(w http.ResponseWriter, status int, success bool, payload Payload) {
	body := make(Payload, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = success
	WriteJSON(w, status, body)
}

func Success(w http.ResponseWriter, payload Payload) {
	respond(w, http.StatusOK, true, payload)
}

func Created(w http.ResponseWriter, payload Payload) {
	respond(w, http.StatusCreated, true, payload)
}

// Fail writes {"success":false,"error":message,"code":code,"requestId":...}.
func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	FailWithDetails(w, status, code, message, nil, requestID)
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details Payload, requestID string) {
	body := Payload{"error": message, "code": code}
	for k, v := range details {
		body[k] = v
	}
	if requestID != "" {
		body["requestId"] = requestID
	}
	respond(w, status, false, body)
}
