package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"paldeck_server/models"
)

// ErrEmptyMessage is returned when sending blank text
var ErrEmptyMessage = errors.New("message is empty")

// EmptyStatePrompt is shown in a chat with no messages yet
func EmptyStatePrompt(name string) string {
	return "Say hi to " + name + "!"
}

// ChatAPI is what a chat screen needs from the server
type ChatAPI interface {
	Messages(ctx context.Context, matchID string) ([]models.MessageRecord, error)
	SendMessage(ctx context.Context, matchID, text string) (*models.MessageRecord, error)
	MarkRead(ctx context.Context, matchID string) (int, error)
}

// ChatView holds the messages of the open chat. Results of a fetch started for a
// chat that is no longer open are dropped.
type ChatView struct {
	api ChatAPI

	mu         sync.Mutex
	matchID    string
	generation uint64
	messages   []models.MessageRecord
	ids        map[string]struct{}
}

// NewChatView creates a view with no chat open
func NewChatView(api ChatAPI) *ChatView {
	return &ChatView{api: api, ids: make(map[string]struct{})}
}

// Open switches to matchID, loads its history and marks it read. It reports false
// when another Open superseded this one before the history arrived.
func (v *ChatView) Open(ctx context.Context, matchID string) (bool, error) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.matchID = matchID
	v.messages = nil
	v.ids = make(map[string]struct{})
	v.mu.Unlock()

	msgs, err := v.api.Messages(ctx, matchID)
	if err != nil {
		return false, err
	}

	v.mu.Lock()
	if v.generation != gen {
		v.mu.Unlock()
		return false, nil
	}
	for _, m := range msgs {
		v.appendLocked(m)
	}
	v.mu.Unlock()

	// read receipts are best effort
	_, _ = v.api.MarkRead(ctx, matchID)
	return true, nil
}

// Close forgets the open chat so late results are dropped
func (v *ChatView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.matchID = ""
	v.messages = nil
	v.ids = make(map[string]struct{})
}

// MatchID is the open chat, or ""
func (v *ChatView) MatchID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.matchID
}

// Messages returns the open chat's messages oldest first
func (v *ChatView) Messages() []models.MessageRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.MessageRecord(nil), v.messages...)
}

// Receive adds a realtime message. Duplicates and messages of other chats are ignored.
func (v *ChatView) Receive(msg models.MessageRecord) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if msg.MatchID != v.matchID {
		return false
	}
	return v.appendLocked(msg)
}

// Send posts text to the open chat and appends the stored message
func (v *ChatView) Send(ctx context.Context, text string) (*models.MessageRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	v.mu.Lock()
	matchID, gen := v.matchID, v.generation
	v.mu.Unlock()
	if matchID == "" {
		return nil, errors.New("no chat open")
	}

	msg, err := v.api.SendMessage(ctx, matchID, text)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	if v.generation == gen {
		v.appendLocked(*msg)
	}
	v.mu.Unlock()
	return msg, nil
}

// Prompt is the empty-state text for the open chat, or "" once it has messages
func (v *ChatView) Prompt(name string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.messages) > 0 {
		return ""
	}
	return EmptyStatePrompt(name)
}

// appendLocked keeps messages ordered by id, which is creation order
func (v *ChatView) appendLocked(msg models.MessageRecord) bool {
	if _, dup := v.ids[msg.ID]; dup {
		return false
	}
	v.ids[msg.ID] = struct{}{}

	i := len(v.messages)
	for i > 0 && v.messages[i-1].ID > msg.ID {
		i--
	}
	v.messages = append(v.messages, models.MessageRecord{})
	copy(v.messages[i+1:], v.messages[i:])
	v.messages[i] = msg
	return true
}
