package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/controllers"
	"paldeck_server/services"
)

// RegisterActionRoutes sets up the swipe route
func RegisterActionRoutes(api *mux.Router, service *services.SwipeService, log *zap.Logger) {
	controller := controllers.NewActionController(service, log)
	api.HandleFunc("/swipes", controller.HandleSwipe).Methods(http.MethodPost)
}
