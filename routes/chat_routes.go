package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/controllers"
	"paldeck_server/services"
)

// RegisterChatRoutes sets up routes for chat operations under /api/chat
func RegisterChatRoutes(api *mux.Router, service *services.ChatService, log *zap.Logger) {
	controller := controllers.NewChatController(service, log)

	chatRouter := api.PathPrefix("/chat/{matchId}").Subrouter()
	chatRouter.HandleFunc("/messages", controller.HandleSendMessage).Methods(http.MethodPost)
	chatRouter.HandleFunc("/messages", controller.HandleGetMessages).Methods(http.MethodGet)
	chatRouter.HandleFunc("/read", controller.HandleMarkMessagesAsRead).Methods(http.MethodPost)
}
