package handler

import "net/http"

// ServeSocket handles GET /ws. The upgraded connection marks the caller
// online and receives their notifications as JSON frames.
func (s *Server) ServeSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	s.Sockets.Serve(w, r, userID)
}
