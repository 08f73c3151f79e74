package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/viewstore/internal/common"
)

const (
	codeOK               = "ok"
	codeInvalidParams    = "invalid_params"
	codeNotFound         = "not_found"
	codeUnauthorized     = "unauthorized"
	codeTimeout          = "timeout"
	codeInternal         = "internal"
	codeMethodNotAllowed = "method_not_allowed"
)

// envelope is the body of every API response. Data is set on success,
// Msg and, for parameter errors, Field on failure.
type envelope struct {
	Code  string `json:"code"`
	Msg   string `json:"msg,omitempty"`
	Field string `json:"field,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// headers are gone already
		s.logger.Error(r.Context(), "failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeOK(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.writeJSON(w, r, status, envelope{Code: codeOK, Data: data})
}

// writeError maps err to a status and envelope. Internal details never reach
// the client; they are logged instead.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var pe *common.ParamError
	switch {
	case errors.As(err, &pe):
		s.logger.Warn(ctx, "invalid request", "field", pe.Field, "reason", pe.Reason)
		s.writeJSON(w, r, http.StatusBadRequest, envelope{Code: codeInvalidParams, Msg: pe.Reason, Field: pe.Field})
	case errors.Is(err, common.ErrorNotFound):
		s.logger.Warn(ctx, "not found", "error", err)
		s.writeJSON(w, r, http.StatusNotFound, envelope{Code: codeNotFound, Msg: "not found"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		s.writeJSON(w, r, http.StatusUnauthorized, envelope{Code: codeUnauthorized, Msg: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn(ctx, "request timed out", "error", err)
		s.writeJSON(w, r, http.StatusGatewayTimeout, envelope{Code: codeTimeout, Msg: "request timed out"})
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, envelope{Code: codeInternal, Msg: "internal error"})
	}
}
