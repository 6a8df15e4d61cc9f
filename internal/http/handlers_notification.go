package http

import (
	"net/http"
	"time"

	"singil/internal/core"
)

type notificationDTO struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Target    string `json:"target"`
	CreatedAt string `json:"created_at"`
	Read      bool   `json:"read"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if s.notifications == nil {
		writeError(w, http.StatusServiceUnavailable, "notifications not configured")
		return
	}
	items, err := s.notifications.Notifications(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Notification fetch failed", "error", err)
		writeServiceError(w, err)
		return
	}

	unread := 0
	out := make([]notificationDTO, 0, len(items))
	for _, n := range items {
		if !n.Read {
			unread++
		}
		out = append(out, notificationToDTO(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": out,
		"unread_count":  unread,
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.notifier == nil {
		writeError(w, http.StatusServiceUnavailable, "notifications not configured")
		return
	}
	if err := s.notifier.MarkRead(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Mark notification read failed",
			"notification_id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "read": true})
}

func notificationToDTO(n core.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Target:    core.NotificationTarget(n.Title),
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
		Read:      n.Read,
	}
}
