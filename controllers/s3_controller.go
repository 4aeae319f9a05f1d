package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/models"
	"paldeck_server/services"
	"paldeck_server/utils"
)

// PhotoController hands out presigned S3 URLs for profile photos
type PhotoController struct {
	PhotoService *services.PhotoService
	Log          *zap.Logger
}

// NewPhotoController initializes the photo controller
func NewPhotoController(service *services.PhotoService, log *zap.Logger) *PhotoController {
	return &PhotoController{PhotoService: service, Log: log}
}

// HandleUploadURL generates a presigned URL for uploading a photo
func (c *PhotoController) HandleUploadURL(w http.ResponseWriter, r *http.Request) {
	var req models.PhotoUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	url, key, err := c.PhotoService.UploadURL(ctx, middleware.UserID(r.Context()), req.FileName, req.FileType)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url, "fileName": key})
}

// HandleReadURL generates a presigned URL for reading a photo
func (c *PhotoController) HandleReadURL(w http.ResponseWriter, r *http.Request) {
	var req models.PhotoReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	url, err := c.PhotoService.ReadURL(ctx, req.Key)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}
