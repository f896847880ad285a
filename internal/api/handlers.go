package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/httputil"
	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/service/assignment"
)

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// handleHealth reports liveness.
//
//	GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, healthResponse{
		Status: "healthy",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	})
}

type unassignedResponse struct {
	Count   int                           `json:"count"`
	Records []domain.UnassignedLeadRecord `json:"records"`
}

// handleListUnassigned lists leads awaiting operator follow-up, optionally
// filtered to one funnel.
//
//	GET /api/unassigned?funnel=<funnelID>&limit=<n>
func (s *Server) handleListUnassigned(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.unassigned.List(r.Context(), r.URL.Query().Get("funnel"), limit)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, unassignedResponse{Count: len(records), Records: records})
}

// handleGetLead returns one lead with its routing state.
//
//	GET /api/leads/{leadID}
func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := s.leads.Get(r.Context(), chi.URLParam(r, "leadID"))
	if errors.Is(err, assignment.ErrLeadNotFound) {
		httputil.NotFound(w, "lead not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, lead)
}

type notificationsResponse struct {
	LeadID  string                      `json:"lead_id"`
	Count   int                         `json:"count"`
	Records []domain.NotificationRecord `json:"records"`
}

// handleListNotifications returns the notification audit trail for a lead.
//
//	GET /api/leads/{leadID}/notifications
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	records, err := s.notifications.ListForLead(r.Context(), leadID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, notificationsResponse{LeadID: leadID, Count: len(records), Records: records})
}
