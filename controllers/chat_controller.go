package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/models"
	"paldeck_server/services"
	"paldeck_server/utils"
)

// ChatController handles chat messages of a match
type ChatController struct {
	ChatService *services.ChatService
	Log         *zap.Logger
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService, log *zap.Logger) *ChatController {
	return &ChatController{ChatService: service, Log: log}
}

// HandleGetMessages returns the match's messages oldest first
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	msgs, err := c.ChatService.GetMessages(ctx, mux.Vars(r)["matchId"], middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, msgs)
}

// HandleSendMessage stores a message from the caller
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	msg, err := c.ChatService.SendMessage(ctx, mux.Vars(r)["matchId"], middleware.UserID(r.Context()), req.Text)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, msg)
}

// HandleMarkMessagesAsRead marks every message the caller received in the match as read
func (c *ChatController) HandleMarkMessagesAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	n, err := c.ChatService.MarkAsRead(ctx, mux.Vars(r)["matchId"], middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]int{"updated": n})
}
