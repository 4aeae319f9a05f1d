package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/models"
	"paldeck_server/services"
	"paldeck_server/utils"
)

// ActionController handles swipe actions
type ActionController struct {
	SwipeService *services.SwipeService
	Log          *zap.Logger
}

// NewActionController creates a new ActionController instance
func NewActionController(service *services.SwipeService, log *zap.Logger) *ActionController {
	return &ActionController{SwipeService: service, Log: log}
}

// HandleSwipe records a left or right swipe and reports a match if one exists
func (c *ActionController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	var req models.SwipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	res, err := c.SwipeService.RecordSwipe(ctx, middleware.UserID(r.Context()), req.SwipedID, req.Direction)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	utils.WriteJSONResponse(w, status, models.SwipeResponse{Swipe: res.Swipe, Match: res.Match})
}
