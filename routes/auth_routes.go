package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"paldeck_server/controllers"
	"paldeck_server/middleware"
)

// RegisterAuthRoutes sets up account routes under /api/auth. Sign-up and sign-in are
// public; the others need a token.
func RegisterAuthRoutes(r *mux.Router, deps Dependencies) {
	controller := controllers.NewAuthController(deps.Auth, deps.Log)

	public := r.PathPrefix("/api/auth").Subrouter()
	if deps.Limiter != nil {
		public.Use(deps.Limiter.Handler)
	}
	public.HandleFunc("/signup", controller.HandleSignUp).Methods(http.MethodPost)
	public.HandleFunc("/signin", controller.HandleSignIn).Methods(http.MethodPost)

	private := r.PathPrefix("/api/auth").Subrouter()
	private.Use(middleware.Auth(deps.Auth, deps.Log))
	private.HandleFunc("/signout", controller.HandleSignOut).Methods(http.MethodPost)
	private.HandleFunc("/me", controller.HandleMe).Methods(http.MethodGet)
}
