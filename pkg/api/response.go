package api

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"

	"github.com/dmitrymomot/notifykit/pkg/coordinator"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/policy"
	"github.com/dmitrymomot/notifykit/pkg/trigger"
)

// JSONResponse is the envelope of every API response.
type JSONResponse struct {
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// HTTPError is an error with a fixed status and response code.
type HTTPError struct {
	Status int
	Key    string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest      = HTTPError{Status: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound        = HTTPError{Status: http.StatusNotFound, Key: "not_found"}
	ErrTooManyRequests = HTTPError{Status: http.StatusTooManyRequests, Key: "rate_limited"}
	ErrUnavailable     = HTTPError{Status: http.StatusServiceUnavailable, Key: "service_unavailable"}
)

// ValidationError maps request fields to their problems.
type ValidationError map[string][]string

func (v ValidationError) Error() string { return "validation failed" }

func (v ValidationError) add(field, msg string) { v[field] = append(v[field], msg) }

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respond(w http.ResponseWriter, status int, code string, data any, meta map[string]any) {
	writeJSON(w, status, JSONResponse{Code: code, Data: data, Meta: meta})
}

// errorStatus maps domain errors to a status and response code.
func errorStatus(err error) (int, string) {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status, httpErr.Key
	case errors.Is(err, notifications.ErrInvalidNotification),
		errors.Is(err, coordinator.ErrUnknownChannel),
		errors.Is(err, policy.ErrUnknownCategory),
		errors.Is(err, policy.ErrUnknownChannel),
		errors.Is(err, policy.ErrInvalidTimezone):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, trigger.ErrInvalidSchedule):
		return http.StatusUnprocessableEntity, "invalid_schedule"
	case errors.Is(err, coordinator.ErrDuplicateID):
		return http.StatusConflict, "duplicate_id"
	case errors.Is(err, coordinator.ErrNotFound), errors.Is(err, notifications.ErrNotificationNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, coordinator.ErrStopped):
		return http.StatusServiceUnavailable, "engine_stopped"
	}
	return http.StatusInternalServerError, "internal_error"
}

func respondError(w http.ResponseWriter, err error) {
	detail := &ErrorDetail{Message: err.Error()}

	var valErr ValidationError
	status, code := errorStatus(err)
	if errors.As(err, &valErr) {
		status, code = http.StatusUnprocessableEntity, "validation_error"
		detail.Details = maps.Clone(valErr)
	}
	if status == http.StatusInternalServerError {
		detail.Message = http.StatusText(status)
	}
	detail.Code = code

	writeJSON(w, status, JSONResponse{Code: code, Error: detail})
}
