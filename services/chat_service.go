package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"paldeck_server/metrics"
	"paldeck_server/models"
	"paldeck_server/store"
)

// Publisher fans a stored message out to realtime subscribers of its match
type Publisher interface {
	Publish(matchID string, msg models.MessageRecord)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, models.MessageRecord) {}

// ChatService stores and reads the messages of a match
type ChatService struct {
	Messages  store.MessageStore
	Matches   *MatchService
	Publisher Publisher
	Log       *zap.Logger

	now     func() time.Time
	idMu    sync.Mutex
	entropy io.Reader
}

// NewChatService creates a ChatService. A nil publisher discards realtime events.
func NewChatService(messages store.MessageStore, matches *MatchService, pub Publisher, log *zap.Logger) *ChatService {
	if pub == nil {
		pub = noopPublisher{}
	}
	return &ChatService{
		Messages:  messages,
		Matches:   matches,
		Publisher: pub,
		Log:       log,
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// SendMessage stores a message from senderID and publishes it to the match
func (s *ChatService) SendMessage(ctx context.Context, matchID, senderID, text string) (*models.MessageRecord, error) {
	text, err := ValidateMessageText(text)
	if err != nil {
		return nil, err
	}
	if _, err := s.Matches.GetMatchForUser(ctx, matchID, senderID); err != nil {
		return nil, err
	}

	msg := models.MessageRecord{
		MatchID: matchID,
		Sender:  senderID,
		Text:    text,
		Read:    false,
	}
	msg.ID, msg.CreatedAt = s.newID()

	if err := s.Messages.PutMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	metrics.MessageSent()
	s.Log.Info("📩 message stored", zap.String("matchId", matchID), zap.String("messageId", msg.ID))
	s.Publisher.Publish(matchID, msg)
	return &msg, nil
}

// GetMessages returns the match's messages oldest first
func (s *ChatService) GetMessages(ctx context.Context, matchID, userID string) ([]models.MessageRecord, error) {
	if _, err := s.Matches.GetMatchForUser(ctx, matchID, userID); err != nil {
		return nil, err
	}

	msgs, err := s.Messages.ListMessages(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.MessageRecord{}
	}
	return msgs, nil
}

// MarkAsRead flips read on every message of the match that userID received
func (s *ChatService) MarkAsRead(ctx context.Context, matchID, userID string) (int, error) {
	if _, err := s.Matches.GetMatchForUser(ctx, matchID, userID); err != nil {
		return 0, err
	}

	n, err := s.Messages.MarkMessagesRead(ctx, matchID, userID)
	if err != nil {
		return n, fmt.Errorf("failed to mark messages as read: %w", err)
	}
	if n > 0 {
		s.Log.Info("👀 messages marked as read", zap.String("matchId", matchID), zap.Int("count", n))
	}
	return n, nil
}

// newID returns a ULID and its timestamp. Ids minted in the same millisecond still
// increase, so id order is send order.
func (s *ChatService) newID() (string, time.Time) {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	now := s.now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), s.entropy)
	return id.String(), now
}
