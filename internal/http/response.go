package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"singil/internal/core"
	"singil/internal/portal"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError emits the uniform error envelope: error string plus empty
// data, so clients never have to distinguish "failed" from "hung".
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
		"data":  nil,
	})
}

// statusFor maps service errors onto HTTP statuses. Portal failures keep
// their upstream code where it is meaningful to the client.
func statusFor(err error) int {
	var se *portal.StatusError
	if errors.As(err, &se) {
		if se.IsAuthError() {
			return http.StatusUnauthorized
		}
		if se.Code >= 400 && se.Code < 500 {
			return se.Code
		}
		return http.StatusBadGateway
	}
	switch {
	case errors.Is(err, core.ErrUnknownDepartment),
		errors.Is(err, core.ErrEmptyRange),
		errors.Is(err, core.ErrInvalidPage),
		errors.Is(err, core.ErrInvalidAmount):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
