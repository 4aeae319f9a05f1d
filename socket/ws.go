package socket

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/models"
	"paldeck_server/realtime"
	"paldeck_server/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamHandler streams a match's new messages as JSON over a WebSocket.
// Clients authenticate with ?token= since browsers cannot set headers on upgrade.
type StreamHandler struct {
	Hub      *realtime.Hub
	Verifier middleware.TokenVerifier
	Matches  ParticipantChecker
	Log      *zap.Logger
	Upgrader websocket.Upgrader
}

// NewStreamHandler creates a StreamHandler
func NewStreamHandler(hub *realtime.Hub, verifier middleware.TokenVerifier, matches ParticipantChecker, log *zap.Logger) *StreamHandler {
	return &StreamHandler{
		Hub:      hub,
		Verifier: verifier,
		Matches:  matches,
		Log:      log,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.BearerToken(r)
	}
	claims, err := h.Verifier.Verify(token)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: "invalid or expired token"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	allowed, err := h.Matches.IsParticipant(ctx, matchID, claims.Subject)
	cancel()
	if err != nil {
		h.Log.Error("❌ stream participant check failed", zap.String("matchId", matchID), zap.Error(err))
		utils.WriteJSONResponse(w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal", Message: "Something went wrong"})
		return
	}
	if !allowed {
		utils.WriteJSONResponse(w, http.StatusForbidden, models.ErrorResponse{Error: "forbidden", Message: "not a participant of this match"})
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("⚠️ websocket upgrade failed", zap.Error(err))
		return
	}

	msgs, unsubscribe := h.Hub.Subscribe(matchID)
	defer unsubscribe()
	h.Log.Info("📡 stream opened", zap.String("matchId", matchID), zap.String("userId", claims.Subject))

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, msgs, done)
	h.Log.Info("📴 stream closed", zap.String("matchId", matchID), zap.String("userId", claims.Subject))
}

// readPump drains client frames so pongs and close frames are processed
func (h *StreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) writePump(conn *websocket.Conn, msgs <-chan models.MessageRecord, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-msgs:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
