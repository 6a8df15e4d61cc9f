package http

import (
	"net/http"

	"singil/internal/core"
)

type sectionDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	AvailableStalls int    `json:"available_stalls"`
}

func (s *Server) handleAvailableStalls(w http.ResponseWriter, r *http.Request) {
	if s.sections == nil {
		writeError(w, http.StatusServiceUnavailable, "section listing not configured")
		return
	}
	sections, err := s.sections.AvailableStalls(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Available stalls fetch failed", "error", err)
		writeServiceError(w, err)
		return
	}
	out := make([]sectionDTO, 0, len(sections))
	for _, sec := range sections {
		out = append(out, sectionDTO{ID: sec.ID, Name: sec.Name, AvailableStalls: sec.AvailableStalls})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out})
}

type statsDTO struct {
	TotalCollections  core.Money `json:"total_collections"`
	PendingApprovals  int        `json:"pending_approvals"`
	ActiveVendors     int        `json:"active_vendors"`
	OccupiedStalls    int        `json:"occupied_stalls"`
	AvailableStalls   int        `json:"available_stalls"`
	PendingRemittance core.Money `json:"pending_remittance"`
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard stats not configured")
		return
	}

	stats, ok := s.statsCache.Get("stats")
	if !ok {
		var err error
		stats, err = s.stats.DashboardStats(r.Context())
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Dashboard stats fetch failed", "error", err)
			writeServiceError(w, err)
			return
		}
		s.statsCache.Set("stats", stats)
	}

	writeJSON(w, http.StatusOK, statsDTO{
		TotalCollections:  stats.TotalCollections,
		PendingApprovals:  stats.PendingApprovals,
		ActiveVendors:     stats.ActiveVendors,
		OccupiedStalls:    stats.OccupiedStalls,
		AvailableStalls:   stats.AvailableStalls,
		PendingRemittance: stats.PendingRemittance,
	})
}

type collectorTotalDTO struct {
	CollectorID string     `json:"collector_id"`
	Collector   string     `json:"collector"`
	Department  string     `json:"department"`
	Total       core.Money `json:"total"`
}

func (s *Server) handleCollectorTotals(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard stats not configured")
		return
	}
	totals, err := s.stats.CollectorTotals(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Collector totals fetch failed", "error", err)
		writeServiceError(w, err)
		return
	}
	out := make([]collectorTotalDTO, 0, len(totals))
	for _, t := range totals {
		out = append(out, collectorTotalDTO{
			CollectorID: t.CollectorID,
			Collector:   t.Collector,
			Department:  string(t.Department),
			Total:       t.Total,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"collector_totals": out})
}
