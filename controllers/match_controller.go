package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/services"
	"paldeck_server/utils"
)

// MatchController handles match listing
type MatchController struct {
	MatchService *services.MatchService
	Log          *zap.Logger
}

// NewMatchController initializes the match controller
func NewMatchController(service *services.MatchService, log *zap.Logger) *MatchController {
	return &MatchController{MatchService: service, Log: log}
}

// HandleGetMatches lists the caller's matches, newest first
func (c *MatchController) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	matches, err := c.MatchService.ListMatches(ctx, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, matches)
}

// HandleGetMatch returns one of the caller's matches
func (c *MatchController) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	match, err := c.MatchService.GetMatchView(ctx, mux.Vars(r)["matchId"], middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, match)
}
