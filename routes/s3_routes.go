package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/controllers"
	"paldeck_server/services"
)

// RegisterS3Routes sets up presigned photo URL routes under /api/photos
func RegisterS3Routes(api *mux.Router, service *services.PhotoService, log *zap.Logger) {
	controller := controllers.NewPhotoController(service, log)

	photoRouter := api.PathPrefix("/photos").Subrouter()
	photoRouter.HandleFunc("/upload-url", controller.HandleUploadURL).Methods(http.MethodPost)
	photoRouter.HandleFunc("/read-url", controller.HandleReadURL).Methods(http.MethodPost)
}
