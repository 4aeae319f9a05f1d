package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/controllers"
	"paldeck_server/services"
)

// RegisterUserProfileRoutes sets up profile routes under /api/profiles and the deck
func RegisterUserProfileRoutes(api *mux.Router, service *services.ProfileService, log *zap.Logger) {
	controller := controllers.NewUserProfileController(service, log)

	profileRouter := api.PathPrefix("/profiles").Subrouter()
	profileRouter.HandleFunc("", controller.HandleCreateProfile).Methods(http.MethodPost)
	profileRouter.HandleFunc("/me", controller.HandleGetMyProfile).Methods(http.MethodGet)
	profileRouter.HandleFunc("/me", controller.HandleUpdateProfile).Methods(http.MethodPut)
	profileRouter.HandleFunc("/{id}", controller.HandleGetProfile).Methods(http.MethodGet)

	api.HandleFunc("/deck", controller.HandleGetDeck).Methods(http.MethodGet)
}
