package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/controllers"
	"paldeck_server/metrics"
	"paldeck_server/middleware"
	"paldeck_server/services"
)

// Dependencies are the services the HTTP API is built on. Photos may be nil when
// no bucket is configured.
type Dependencies struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
	Swipes   *services.SwipeService
	Matches  *services.MatchService
	Chat     *services.ChatService
	Photos   *services.PhotoService
	Limiter  *middleware.RateLimiter
	Log      *zap.Logger
}

// RegisterRoutes sets up every route of the application and returns the
// authenticated /api subrouter
func RegisterRoutes(r *mux.Router, deps Dependencies) *mux.Router {
	r.Use(middleware.Logging(deps.Log), middleware.Metrics)

	r.HandleFunc("/", controllers.WelcomeHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods(http.MethodGet)
	r.HandleFunc("/privacy-policy", PrivacyPolicyHandler).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	RegisterAuthRoutes(r, deps)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(deps.Auth, deps.Log))
	if deps.Limiter != nil {
		api.Use(deps.Limiter.Handler)
	}

	RegisterUserProfileRoutes(api, deps.Profiles, deps.Log)
	RegisterActionRoutes(api, deps.Swipes, deps.Log)
	RegisterMatchRoutes(api, deps.Matches, deps.Log)
	RegisterChatRoutes(api, deps.Chat, deps.Log)
	if deps.Photos != nil {
		RegisterS3Routes(api, deps.Photos, deps.Log)
	}
	return api
}
