package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Moderation    *controllers.ModerationController
	Registrations *controllers.RegistrationController
	Reviews       *controllers.ReviewController
	Wishlist      *controllers.WishlistController
	Stats         *controllers.StatsController
	Health        *controllers.HealthController
}

// RouterConfig carries the cross-cutting pieces wrapped around every route.
type RouterConfig struct {
	Logger      *slog.Logger
	Verifier    domain.TokenVerifier
	CORSOrigins []string
	// RateLimit is optional; nil disables rate limiting.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter initializes the HTTP router with all application routes and wraps it with
// recovery, request logging, CORS and rate limiting, outermost first.
func NewRouter(c Controllers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	optional := middleware.OptionalAuth(cfg.Verifier, cfg.Logger)
	organizer := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireRole(domain.RoleOrganizer)(h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireRole(domain.RoleAdmin)(h))
	}

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /users/me", authed(c.Auth.Me))

	// Catalog
	mux.HandleFunc("GET /events", optional(c.Events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", c.Events.GetEvent)
	mux.HandleFunc("POST /events", organizer(c.Events.CreateEvent))
	mux.HandleFunc("PATCH /events/{eventID}", organizer(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", organizer(c.Events.DeleteEvent))

	// Moderation
	mux.HandleFunc("GET /admin/events/pending", admin(c.Moderation.ListPendingEvents))
	mux.HandleFunc("POST /admin/events/{eventID}/approve", admin(c.Moderation.ApproveEvent))
	mux.HandleFunc("POST /admin/events/{eventID}/reject", admin(c.Moderation.RejectEvent))

	// Registrations
	mux.HandleFunc("GET /registrations/me", authed(c.Registrations.ListMyRegistrations))
	mux.HandleFunc("POST /registrations/{eventID}/register", authed(c.Registrations.Register))
	mux.HandleFunc("DELETE /registrations/{eventID}", authed(c.Registrations.Cancel))
	mux.HandleFunc("GET /registrations/{eventID}/ticket.pdf", authed(c.Registrations.TicketPDF))
	mux.HandleFunc("GET /registrations/{eventID}/participants", organizer(c.Registrations.ListParticipants))
	mux.HandleFunc("GET /registrations/{eventID}/participants.csv", organizer(c.Registrations.ExportParticipantsCSV))
	mux.HandleFunc("GET /registrations/{eventID}/participants.xlsx", organizer(c.Registrations.ExportParticipantsXLSX))
	mux.HandleFunc("POST /registrations/{eventID}/check-in", organizer(c.Registrations.CheckIn))

	// Reviews
	mux.HandleFunc("GET /reviews/{eventID}", c.Reviews.ListReviews)
	mux.HandleFunc("POST /reviews/{eventID}", authed(c.Reviews.SubmitReview))

	// Wishlist
	mux.HandleFunc("GET /wishlist", authed(c.Wishlist.ListWishlist))
	mux.HandleFunc("POST /wishlist/{eventID}", authed(c.Wishlist.AddToWishlist))
	mux.HandleFunc("DELETE /wishlist/{eventID}", authed(c.Wishlist.RemoveFromWishlist))
	mux.HandleFunc("GET /wishlist/{eventID}/check", authed(c.Wishlist.CheckWishlist))

	// Stats
	mux.HandleFunc("GET /stats/dashboard", c.Stats.Dashboard)
	mux.HandleFunc("GET /stats/leaderboard", c.Stats.Leaderboard)
	mux.HandleFunc("GET /stats/recommendations", optional(c.Stats.Recommendations))

	// Health
	mux.HandleFunc("GET /health", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	if cfg.RateLimit != nil {
		handler = cfg.RateLimit(handler)
	}
	handler = middleware.CORS(cfg.CORSOrigins, handler)
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	return middleware.Recoverer(cfg.Logger, handler)
}
