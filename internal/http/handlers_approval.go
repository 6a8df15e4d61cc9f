package http

import (
	"net/http"
	"time"

	"singil/internal/core"
)

// Approval endpoints follow the portal's fetch-after-write model: each
// decision responds with the refreshed notification list, never an
// optimistic echo of the request. Every mutation also drops the cached
// dashboard stats and report ranges, since pending counts and collection
// totals may have moved.

func (s *Server) handleVendorApplication(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, func(id int64, body decisionBody) ([]core.Notification, error) {
		return s.approvals.ValidateVendorProfile(r.Context(), id, body.Approve, body.Reason)
	})
}

func (s *Server) handleInchargeStatus(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, func(id int64, body decisionBody) ([]core.Notification, error) {
		if body.Status == "" {
			return nil, &badFieldError{"status"}
		}
		return s.approvals.SetInchargeStatus(r.Context(), id, body.Status)
	})
}

func (s *Server) handleStallChange(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, func(id int64, body decisionBody) ([]core.Notification, error) {
		if body.Status == "" {
			return nil, &badFieldError{"status"}
		}
		return s.approvals.SetStallChangeStatus(r.Context(), id, body.Status)
	})
}

func (s *Server) handleStallRemoval(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, func(id int64, body decisionBody) ([]core.Notification, error) {
		return s.approvals.ResolveStallRemoval(r.Context(), id, body.Approve, body.Reason)
	})
}

func (s *Server) handleRemittance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	notifs, err := s.approvals.ApproveRemittance(r.Context(), id)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Remittance approval failed", "id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	s.afterMutation()
	writeNotifications(w, notifs)
}

func (s *Server) handleRenewals(w http.ResponseWriter, r *http.Request) {
	renewals, err := s.approvals.Renewals(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Renewal fetch failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"renewals": renewalsToDTO(renewals)})
}

func (s *Server) handleResolveRenewal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := parseDecision(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	renewals, err := s.approvals.ResolveRenewal(r.Context(), id, body.Approve, body.Reason)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Renewal resolution failed", "id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	s.afterMutation()
	writeJSON(w, http.StatusOK, map[string]any{"renewals": renewalsToDTO(renewals)})
}

// decide handles the shared shape of the decision endpoints: id from the
// path, JSON body, single write attempt, refetched notifications back.
func (s *Server) decide(w http.ResponseWriter, r *http.Request, apply func(int64, decisionBody) ([]core.Notification, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := parseDecision(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	notifs, err := apply(id, body)
	if err != nil {
		if _, ok := err.(*badFieldError); ok {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Approval decision failed",
			"id", id, "path", r.URL.Path, "error", err)
		writeServiceError(w, err)
		return
	}
	s.afterMutation()
	writeNotifications(w, notifs)
}

func (s *Server) afterMutation() {
	s.statsCache.Delete("stats")
	for _, dept := range core.Departments() {
		s.invalidateReports(dept)
	}
}

func writeNotifications(w http.ResponseWriter, notifs []core.Notification) {
	out := make([]notificationDTO, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, notificationToDTO(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

type renewalDTO struct {
	ID          int64  `json:"id"`
	VendorName  string `json:"vendor_name"`
	StallNumber string `json:"stall_number"`
	Section     string `json:"section"`
	FiledAt     string `json:"filed_at"`
	Status      string `json:"status"`
}

func renewalsToDTO(renewals []core.Renewal) []renewalDTO {
	out := make([]renewalDTO, 0, len(renewals))
	for _, r := range renewals {
		out = append(out, renewalDTO{
			ID:          r.ID,
			VendorName:  r.VendorName,
			StallNumber: r.StallNumber,
			Section:     r.Section,
			FiledAt:     r.FiledAt.Format(time.RFC3339),
			Status:      r.Status,
		})
	}
	return out
}

type badFieldError struct{ field string }

func (e *badFieldError) Error() string { return "missing required field " + e.field }
