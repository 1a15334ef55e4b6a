package handler

import (
	"net/http"
	"strconv"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/caravan-share/internal/domain"
)

// ListCaravans handles GET /caravans.
func (s *Server) ListCaravans(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	p := domain.NewPaginationParams(page, limit)
	caravans, total := s.Caravans.List(r.Context(), p)

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, CaravanList{
		Data:       caravansToResponse(caravans),
		Pagination: Pagination{Page: p.Page, Limit: p.Limit, Total: total},
	})
}

// GetCaravan handles GET /caravans/{id}.
func (s *Server) GetCaravan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := s.Caravans.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, caravanToResponse(c))
}

// GetAvailability handles GET /caravans/{id}/availability?start=&end=.
func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	start, ok := queryDate(w, r, "start")
	if !ok {
		return
	}
	end, ok := queryDate(w, r, "end")
	if !ok {
		return
	}
	if !end.After(start) {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "end must be after start")
		return
	}
	if _, err := s.Caravans.GetByID(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Availability{
		CaravanID: id,
		StartDate: openapi_types.Date{Time: start},
		EndDate:   openapi_types.Date{Time: end},
		Available: s.Reservations.IsAvailable(id, start, end),
	})
}

// GetRecommendations handles GET /caravans/{id}/recommendations?limit=.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	n := 0 // service default
	if limit != nil {
		n = min(*limit, domain.MaxPageLimit)
	}
	caravans, err := s.Recommendations.Recommend(r.Context(), id, n)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Recommendations{Data: caravansToResponse(caravans)})
}

// CreateReview handles POST /caravans/{id}/reviews.
func (s *Server) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body CreateReviewRequest
	if !decodeBody(w, r, &body) {
		return
	}
	review, err := s.Reviews.Submit(r.Context(), userID, id, body.Rating, body.Comment)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reviewToResponse(review))
}
