package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin exchanges credentials for a portal session and stores the
// bearer token so the rest client can draw on it. The token itself never
// leaves the server.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "login not configured")
		return
	}
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	if body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	sess, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Login failed", "username", body.Username, "error", err)
		writeServiceError(w, err)
		return
	}

	if s.sessions != nil {
		if err := s.sessions.Set(r.Context(), sess); err != nil {
			s.logger.ErrorContext(r.Context(), "Session store failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to persist session")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"role":         string(sess.Role),
		"user_id":      sess.UserID,
		"collector_id": sess.CollectorID,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.sessions != nil {
		if err := s.sessions.Clear(r.Context()); err != nil {
			s.logger.ErrorContext(r.Context(), "Session clear failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to clear session")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logged_out": true})
}
