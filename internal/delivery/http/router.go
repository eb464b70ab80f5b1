package http

import (
	"net/http"

	"swasth-sathi/internal/delivery/http/handler"
	"swasth-sathi/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	healthRecordHandler *handler.HealthRecordHandler
	contentHandler      *handler.ContentHandler
	chatHandler         *handler.ChatHandler
	contactHandler      *handler.ContactHandler
	locationHandler     *handler.LocationHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	requestLogger       *middleware.RequestLogger
	chatRateLimiter     *middleware.RateLimiter
	codeRateLimiter     *middleware.RateLimiter
}

type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	HealthRecordHandler *handler.HealthRecordHandler
	ContentHandler      *handler.ContentHandler
	ChatHandler         *handler.ChatHandler
	ContactHandler      *handler.ContactHandler
	LocationHandler     *handler.LocationHandler
	AuditLogHandler     *handler.AuditLogHandler
	AuthMiddleware      *middleware.AuthMiddleware
	CORSMiddleware      *middleware.CORSMiddleware
	RequestLogger       *middleware.RequestLogger
	ChatRateLimiter     *middleware.RateLimiter
	CodeRateLimiter     *middleware.RateLimiter
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         deps.AuthHandler,
		healthRecordHandler: deps.HealthRecordHandler,
		contentHandler:      deps.ContentHandler,
		chatHandler:         deps.ChatHandler,
		contactHandler:      deps.ContactHandler,
		locationHandler:     deps.LocationHandler,
		auditLogHandler:     deps.AuditLogHandler,
		authMiddleware:      deps.AuthMiddleware,
		corsMiddleware:      deps.CORSMiddleware,
		requestLogger:       deps.RequestLogger,
		chatRateLimiter:     deps.ChatRateLimiter,
		codeRateLimiter:     deps.CodeRateLimiter,
	}
}

// Setup registers every route and wraps the router in request logging,
// with CORS outermost.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)
	auth.Handle("/otp/request", r.codeRateLimiter.Handle(http.HandlerFunc(r.authHandler.RequestOTP))).Methods(http.MethodPost)
	auth.HandleFunc("/otp/verify", r.authHandler.VerifyOTP).Methods(http.MethodPost)
	auth.Handle("/password/forgot", r.codeRateLimiter.Handle(http.HandlerFunc(r.authHandler.ForgotPassword))).Methods(http.MethodPost)
	auth.HandleFunc("/password/reset", r.authHandler.ResetPassword).Methods(http.MethodPost)

	// Auth routes (protected)
	auth.Handle("/logout", r.protect(r.authHandler.Logout)).Methods(http.MethodPost)
	auth.Handle("/me", r.protect(r.authHandler.GetCurrentUser)).Methods(http.MethodGet)
	auth.Handle("/password", r.protect(r.authHandler.ChangePassword)).Methods(http.MethodPut)

	// Health records (protected)
	api.Handle("/health-records", r.protect(r.healthRecordHandler.GetHealthRecord)).Methods(http.MethodGet)
	api.Handle("/health-records", r.protect(r.healthRecordHandler.CreateHealthRecord)).Methods(http.MethodPost)
	api.Handle("/health-records", r.protect(r.healthRecordHandler.UpdateHealthRecord)).Methods(http.MethodPut)

	// Per-user preferences and activity (protected)
	api.Handle("/me/location", r.protect(r.locationHandler.GetLocation)).Methods(http.MethodGet)
	api.Handle("/me/location", r.protect(r.locationHandler.SaveLocation)).Methods(http.MethodPut)
	api.Handle("/me/activity", r.protect(r.auditLogHandler.GetMyActivity)).Methods(http.MethodGet)

	// Reference content (public)
	api.HandleFunc("/diseases", r.contentHandler.ListDiseases).Methods(http.MethodGet)
	api.HandleFunc("/vaccinations", r.contentHandler.ListVaccinations).Methods(http.MethodGet)
	api.Handle("/alerts", r.authMiddleware.Optional(http.HandlerFunc(r.contentHandler.ListAlerts))).Methods(http.MethodGet)

	// Relays (public, session optional)
	api.Handle("/chat", r.authMiddleware.Optional(r.chatRateLimiter.Handle(http.HandlerFunc(r.chatHandler.Chat)))).Methods(http.MethodPost)
	api.HandleFunc("/contact", r.contactHandler.Submit).Methods(http.MethodPost)

	return r.corsMiddleware.Handle(r.requestLogger.Handle(r.router))
}

func (r *Router) protect(h http.HandlerFunc) http.Handler {
	return r.authMiddleware.Authenticate(h)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
