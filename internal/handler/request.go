package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/middleware"
)

// decodeBody decodes a JSON request body into dst and writes the error
// response itself when it fails.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {name} URL parameter as a positive id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return id, true
}

// queryInt returns a pointer to the integer query parameter, or nil when it
// is absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, fmt.Sprintf("invalid %s %q", name, raw))
		return nil, false
	}
	return &n, true
}

// queryDate parses a required YYYY-MM-DD query parameter.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	d, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation,
			fmt.Sprintf("%s must be a date in %s format", name, domain.DateLayout))
		return time.Time{}, false
	}
	return d, true
}

// currentUser returns the id RequireUser put in the context.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
	}
	return id, ok
}
