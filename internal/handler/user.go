package handler

import (
	"errors"
	"net/http"

	"github.com/pkordes/caravan-share/internal/domain"
)

// RegisterUser handles POST /users.
func (s *Server) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var body RegisterUserRequest
	if !decodeBody(w, r, &body) {
		return
	}
	u, err := s.Users.Register(r.Context(), body.Name, body.Email, body.Balance)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userToResponse(u))
}

// IssueToken handles POST /auth/token. It is the demo identity provider:
// any registered email is exchanged for a bearer token.
func (s *Server) IssueToken(w http.ResponseWriter, r *http.Request) {
	var body TokenRequest
	if !decodeBody(w, r, &body) {
		return
	}
	u, err := s.Users.GetByEmail(r.Context(), body.Email)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "unknown email")
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	token, expires, err := s.Tokens.Issue(u.ID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expires})
}
