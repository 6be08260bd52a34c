package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"worklog/internal/chat"
	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/services"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a single JSON value of at most maxBodyBytes into v.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeServiceError maps service errors to status codes. Store failures
// are logged and reported without detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var refreshErr *services.ErrRefresh
	var extErr *chat.ErrExternalService
	switch {
	case errors.As(err, &refreshErr):
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Snapshot unavailable",
			log.FieldOperation, op, log.FieldKind, refreshErr.Kind.String(), log.FieldError, err.Error())
		writeError(w, http.StatusServiceUnavailable, "ledger data is temporarily unavailable, try again later")
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case services.IsClientError(err), errors.Is(err, chat.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &extErr):
		s.metrics.IncExternalError(extErr.Service)
		log.FromContext(r.Context()).WarnContext(r.Context(), "External service failed",
			log.FieldOperation, op, log.FieldError, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op, log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// sanitizeInput trims s and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
