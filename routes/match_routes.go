package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/controllers"
	"paldeck_server/services"
)

// RegisterMatchRoutes sets up match routes under /api/matches
func RegisterMatchRoutes(api *mux.Router, service *services.MatchService, log *zap.Logger) {
	controller := controllers.NewMatchController(service, log)

	matchRouter := api.PathPrefix("/matches").Subrouter()
	matchRouter.HandleFunc("", controller.HandleGetMatches).Methods(http.MethodGet)
	matchRouter.HandleFunc("/{matchId}", controller.HandleGetMatch).Methods(http.MethodGet)
}
