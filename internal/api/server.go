// Package api serves the read-only operator surface: pipeline health, the
// unassigned-lead queue, and per-lead notification audit records. All
// writes happen through the event pipeline; this API never mutates state.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/domain"
)

// UnassignedLister reads the unassigned-lead queue.
type UnassignedLister interface {
	List(ctx context.Context, funnelID string, limit int) ([]domain.UnassignedLeadRecord, error)
}

// NotificationLister reads a lead's notification audit trail.
type NotificationLister interface {
	ListForLead(ctx context.Context, leadID string) ([]domain.NotificationRecord, error)
}

// LeadReader loads one lead record.
type LeadReader interface {
	Get(ctx context.Context, leadID string) (*domain.Lead, error)
}

// Server is the ops HTTP server.
type Server struct {
	unassigned    UnassignedLister
	notifications NotificationLister
	leads         LeadReader
	startTime     time.Time
}

// NewServer creates the ops API server.
func NewServer(unassigned UnassignedLister, notifications NotificationLister, leads LeadReader) *Server {
	return &Server{
		unassigned:    unassigned,
		notifications: notifications,
		leads:         leads,
		startTime:     time.Now(),
	}
}

// Routes builds the chi router for the ops API.
func (s *Server) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/unassigned", s.handleListUnassigned)
		r.Get("/leads/{leadID}", s.handleGetLead)
		r.Get("/leads/{leadID}/notifications", s.handleListNotifications)
	})

	return r
}
