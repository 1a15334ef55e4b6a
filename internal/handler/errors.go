package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/pkordes/caravan-share/internal/domain"
)

// Error codes of the error body.
const (
	codeNotFound          = "not_found"
	codeValidation        = "validation_error"
	codeUnavailable       = "caravan_unavailable"
	codeInsufficientFunds = "insufficient_funds"
	codeDuplicate         = "duplicate_request"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeConflict          = "conflict"
	codePayloadTooLarge   = "payload_too_large"
	codeCancelled         = "request_cancelled"
	codeInternal          = "internal"
)

// statusClientClosedRequest is the non-standard status proxies log when the
// client went away before the response was written.
const statusClientClosedRequest = 499

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeDomainError maps a service error onto the error body. Anything that is
// not a known business failure is logged and reported as a bare 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unavailable *domain.CaravanUnavailableError
		funds       *domain.InsufficientFundsError
	)
	switch {
	case errors.As(err, &unavailable):
		writeError(w, http.StatusConflict, codeUnavailable, unavailable.Error())
	case errors.As(err, &funds):
		writeError(w, http.StatusPaymentRequired, codeInsufficientFunds, funds.Error())
	case errors.Is(err, domain.ErrInternal):
		s.internalError(w, r, err)
	case errors.Is(err, context.Canceled):
		s.Log.InfoContext(r.Context(), "request cancelled", "path", r.URL.Path, "error", err)
		writeError(w, statusClientClosedRequest, codeCancelled, "request was cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		s.Log.WarnContext(r.Context(), "request timed out", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusGatewayTimeout, codeCancelled, "request timed out")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, unwrapMessage(err))
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err))
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, unwrapMessage(err))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, unwrapMessage(err))
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

// callSite matches the "pkg.Type.Method: " prefixes errors collect on their
// way up the stack.
var callSite = regexp.MustCompile(`^[a-z]+(\.[A-Za-z]+)+: `)

// unwrapMessage extracts the human-readable part of a wrapped error.
// e.g. "service.UserService.Register: store.Save: validation error: name is required"
// becomes "name is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for {
		loc := callSite.FindStringIndex(msg)
		if loc == nil {
			break
		}
		msg = msg[loc[1]:]
	}
	return strings.TrimPrefix(msg, domain.ErrValidation.Error()+": ")
}
