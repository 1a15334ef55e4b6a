package handler

import (
	"context"
	"fmt"
	"net/http"
)

// IdempotencyHeader lets a client retry POST /reservations safely.
const IdempotencyHeader = "Idempotency-Key"

// CreateReservation handles POST /reservations for the authenticated user.
//
// With an Idempotency-Key header the first request claims the key; repeats
// get 409 duplicate_request. A failed booking releases the key so the client
// can retry after fixing the cause.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body CreateReservationRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.StartDate.IsZero() || body.EndDate.IsZero() {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "start_date and end_date are required")
		return
	}

	key := r.Header.Get(IdempotencyHeader)
	if key != "" {
		key = fmt.Sprintf("reservation:%d:%s", userID, key)
		claimed, err := s.Idempotency.Claim(r.Context(), key)
		switch {
		case err != nil:
			// Double booking is still prevented by the conflict check.
			s.Log.WarnContext(r.Context(), "idempotency claim failed", "error", err)
			key = ""
		case !claimed:
			writeError(w, http.StatusConflict, codeDuplicate, "a request with this Idempotency-Key was already processed")
			return
		}
	}

	res, err := s.Reservations.CreateReservation(r.Context(), userID, body.CaravanID, body.StartDate.Time, body.EndDate.Time)
	if err != nil {
		if key != "" {
			if rerr := s.Idempotency.Release(context.WithoutCancel(r.Context()), key); rerr != nil {
				s.Log.WarnContext(r.Context(), "idempotency release failed", "error", rerr)
			}
		}
		s.writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/reservations/%d", res.ID))
	writeJSON(w, http.StatusCreated, reservationToResponse(res))
}

// ListReservations handles GET /reservations: the caller's own bookings.
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	list := s.Reservations.FindByUser(userID)
	out := make([]Reservation, len(list))
	for i, res := range list {
		out[i] = reservationToResponse(res)
	}
	writeJSON(w, http.StatusOK, ReservationList{Data: out})
}

// CancelReservation handles POST /reservations/{id}/cancel.
func (s *Server) CancelReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := s.Reservations.Cancel(r.Context(), userID, id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// GetReservationHistory handles GET /reservations/{id}/history: the ledger's
// last snapshot of one of the caller's reservations and its event kinds.
func (s *Server) GetReservationHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, events, err := s.History.History(r.Context(), userID, id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if events == nil {
		events = []string{}
	}
	writeJSON(w, http.StatusOK, ReservationHistory{Reservation: reservationToResponse(res), Events: events})
}
