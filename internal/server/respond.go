package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"recipe-planner/internal/app"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type result map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, fields result) {
	body := result{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// statusFor maps an action error to its HTTP status.
func statusFor(err error) int {
	var ve *app.ValidationError
	var ae *app.Error
	switch {
	case errors.Is(err, app.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ae) && ae.Kind == app.KindInference:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		var ae *app.Error
		if !errors.As(err, &ae) {
			s.log.Error("unhandled action error", zap.String("path", r.URL.Path), zap.Error(err))
		}
	}
	writeJSON(w, status, result{"error": app.Message(err)})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &app.ValidationError{Field: "body", Message: "Invalid request body"}
	}
	return nil
}
