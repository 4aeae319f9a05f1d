// Package socket serves realtime chat: a socket.io server with one room per match
// and a plain WebSocket stream, both fed by the realtime hub.
package socket

import (
	"context"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/models"
	"paldeck_server/realtime"
)

// NewMessageEvent is emitted to a match room for every stored message
const NewMessageEvent = "newMessage"

const checkTimeout = 5 * time.Second

// ParticipantChecker tells whether a user may listen on a match
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, matchID, userID string) (bool, error)
}

type roomRequest struct {
	MatchID string `json:"matchId"`
}

type connState struct {
	userID string
}

// NewSocketServer initializes the socket.io server and subscribes it to every
// message published on hub
func NewSocketServer(hub *realtime.Hub, verifier middleware.TokenVerifier, matches ParticipantChecker, log *zap.Logger) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(s socketio.Conn) error {
		u := s.URL()
		claims, err := verifier.Verify(u.Query().Get("token"))
		if err != nil {
			log.Debug("🔒 socket rejected", zap.String("socketId", s.ID()), zap.Error(err))
			return err
		}
		s.SetContext(&connState{userID: claims.Subject})
		log.Info("✅ socket connected", zap.String("socketId", s.ID()), zap.String("userId", claims.Subject))
		return nil
	})

	server.OnEvent("/", "join", func(s socketio.Conn, req roomRequest) {
		state, ok := s.Context().(*connState)
		if !ok || req.MatchID == "" {
			log.Warn("❌ invalid join request", zap.String("socketId", s.ID()))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		allowed, err := matches.IsParticipant(ctx, req.MatchID, state.userID)
		if err != nil {
			log.Error("❌ join check failed", zap.String("matchId", req.MatchID), zap.Error(err))
			return
		}
		if !allowed {
			log.Warn("🚫 join refused", zap.String("matchId", req.MatchID), zap.String("userId", state.userID))
			return
		}

		s.Join(req.MatchID)
		log.Info("👥 joined match room", zap.String("matchId", req.MatchID), zap.String("userId", state.userID))
	})

	server.OnEvent("/", "leave", func(s socketio.Conn, req roomRequest) {
		if req.MatchID != "" {
			s.Leave(req.MatchID)
		}
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		log.Warn("⚠️ socket error", zap.Error(err))
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Info("❌ socket disconnected", zap.String("socketId", s.ID()), zap.String("reason", reason))
	})

	hub.AddSink(func(matchID string, msg models.MessageRecord) {
		server.BroadcastToRoom("/", matchID, NewMessageEvent, msg)
	})

	return server
}
