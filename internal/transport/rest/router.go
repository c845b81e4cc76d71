package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/campushq/internship-portal/internal/account"
	"github.com/campushq/internship-portal/internal/application"
	"github.com/campushq/internship-portal/internal/audit"
	"github.com/campushq/internship-portal/internal/auth"
	"github.com/campushq/internship-portal/internal/chatbot"
	"github.com/campushq/internship-portal/internal/offer"
	"github.com/campushq/internship-portal/internal/transport/middleware"
	"github.com/campushq/internship-portal/internal/transport/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	DB                 *sql.DB
	AuthMiddleware     *auth.Middleware
	Limiter            middleware.Limiter
	AccountHandler     *account.Handler
	OfferHandler       *offer.Handler
	ApplicationHandler *application.Handler
	AuditHandler       *audit.Handler
	ChatHandler        *chatbot.Handler
	AllowedOrigins     []string
	Logger             *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)
	authn := deps.AuthMiddleware

	admins := []account.Role{account.RoleAdmin, account.RoleMasterAdmin}
	reviewers := append([]account.Role{account.RoleFaculty}, admins...)

	// Apply global middleware
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes, throttled per client IP
		r.Route("/auth", func(sr chi.Router) {
			sr.Use(middleware.RateLimit(deps.Limiter, middleware.ClientIP, 20, time.Minute))
			sr.Post("/signup", deps.AccountHandler.Signup)
			sr.Post("/verify-otp", deps.AccountHandler.VerifyOTP)
			sr.Post("/resend-otp", deps.AccountHandler.ResendOTP)
			sr.Post("/forgot-password", deps.AccountHandler.ForgotPassword)
			sr.Post("/reset-password", deps.AccountHandler.ResetPassword)
			sr.Post("/login", deps.AccountHandler.Login)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authn.Authenticate)

			pr.Route("/offers", func(or chi.Router) {
				or.Get("/", deps.OfferHandler.List)
				or.Get("/{id}", deps.OfferHandler.Get)

				or.Group(func(rr chi.Router) {
					rr.Use(authn.RequireRoles(account.RoleRecruiter))
					rr.Post("/", deps.OfferHandler.Create)
				})

				or.Group(func(fr chi.Router) {
					fr.Use(authn.RequireRoles(reviewers...))
					fr.Patch("/{id}/faculty", deps.OfferHandler.FacultyApprove)
					fr.Patch("/{id}/reject", deps.OfferHandler.Reject)
				})

				or.Group(func(ar chi.Router) {
					ar.Use(authn.RequireRoles(admins...))
					ar.Patch("/{id}/admin", deps.OfferHandler.AdminApprove)
				})
			})

			pr.Route("/applications", func(ar chi.Router) {
				ar.Group(func(sr chi.Router) {
					sr.Use(authn.RequireRoles(account.RoleStudent, account.RoleAdmin, account.RoleMasterAdmin))
					sr.Post("/", deps.ApplicationHandler.Create)
				})

				ar.Get("/offer/{offerId}", deps.ApplicationHandler.ListByOffer)

				ar.Group(func(fr chi.Router) {
					fr.Use(authn.RequireRoles(reviewers...))
					fr.Patch("/{id}/approve/faculty", deps.ApplicationHandler.FacultyApprove)
					fr.Patch("/{id}/reject", deps.ApplicationHandler.Reject)
				})

				ar.Group(func(adr chi.Router) {
					adr.Use(authn.RequireRoles(admins...))
					adr.Patch("/{id}/approve/admin", deps.ApplicationHandler.AdminApprove)
				})
			})

			// Admin surface
			pr.Group(func(adm chi.Router) {
				adm.Use(authn.RequireRoles(admins...))
				adm.Get("/audit-logs", deps.AuditHandler.List)
				adm.Get("/admin/pending-users", deps.AccountHandler.ListPendingAccounts)
				adm.Post("/admin/approve-user/{id}", deps.AccountHandler.ApproveAccount)
			})

			// Chat command dispatch, capability-checked per role inside
			pr.Post("/chat", deps.ChatHandler.Chat)
		})
	})
}
