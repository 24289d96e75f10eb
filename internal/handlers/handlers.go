package handlers

import (
	"DataSentinel/internal/config"
	"DataSentinel/internal/middleware"
	"DataSentinel/internal/notify"
	"DataSentinel/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	svc *service.Services,
	hub *notify.Hub,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(svc.Users, logger, config)
	fileHandler := NewFileHandler(svc.Files, svc.Access, logger, config)
	accessHandler := NewAccessHandler(svc.Access, svc.Dashboard, logger)
	protectionHandler := NewProtectionHandler(svc.Protection, logger)
	consentHandler := NewConsentHandler(svc.Consents, logger)
	notificationHandler := NewNotificationHandler(svc.Notifications, hub, logger)
	escalationHandler := NewEscalationHandler(svc.Escalations, logger)
	adminHandler := NewAdminHandler(svc, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/user/me", userHandler.Me)

		// Files
		r.Post("/api/files", fileHandler.Upload)
		r.Get("/api/files", fileHandler.List)
		r.Get("/api/files/partner", fileHandler.PartnerView)
		r.Post("/api/files/{fileID}/access", fileHandler.AccessFile)
		r.Get("/api/files/{fileID}/download", fileHandler.Download)

		// Access workflow
		r.Post("/api/access/request", accessHandler.Request)
		r.Post("/api/access/approve", accessHandler.Approve)
		r.Get("/api/access/requests", accessHandler.List)
		r.Get("/api/alerts/files", accessHandler.FileAlerts)

		// Protection artefacts
		r.Post("/api/honeytokens", protectionHandler.GenerateHoneytoken)
		r.Post("/api/watermarks", protectionHandler.GenerateWatermark)
		r.Get("/api/watermarks/{token}", protectionHandler.LookupWatermark)
		r.Post("/api/policies", protectionHandler.GeneratePolicy)
		r.Get("/api/policies", protectionHandler.ListPolicies)
		r.Post("/api/policies/{policyID}/deactivate", protectionHandler.DeactivatePolicy)
		r.Post("/api/partner/data-requests", protectionHandler.DataRequest)

		r.Get("/api/consent", consentHandler.Get)
		r.Post("/api/consent", consentHandler.Update)

		r.Get("/api/notifications", notificationHandler.List)
		r.Post("/api/notifications/{id}/read", notificationHandler.MarkRead)
		r.Get("/api/notifications/stream", notificationHandler.Stream)

		r.Post("/api/escalations", escalationHandler.Create)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/trap-logs", adminHandler.TrapLogs)
		r.Post("/trap-logs/{id}/escalate", adminHandler.EscalateTrap)

		r.Get("/partners", adminHandler.Partners)
		r.Get("/partners/{id}", adminHandler.Partner)
		r.Get("/partners/{id}/history", adminHandler.PartnerHistory)
		r.Post("/partners/{id}/block", adminHandler.Block)
		r.Post("/partners/{id}/unblock", adminHandler.Unblock)

		r.Get("/partner-activity", adminHandler.PartnerActivity)
		r.Get("/user-activity", adminHandler.UserActivity)
		r.Get("/risk-overview", adminHandler.RiskOverview)

		r.Get("/access-logs", adminHandler.AccessLogs)
		r.Get("/access-logs/verify", adminHandler.VerifyAccessLogs)

		r.Get("/escalations", escalationHandler.List)
		r.Post("/escalations/{id}/resolve", escalationHandler.Resolve)
	})

	return &Handler{Router: r}
}
