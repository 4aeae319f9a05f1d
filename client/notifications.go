package client

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"paldeck_server/models"
)

// Notification is an in-app notice. It only lives in memory.
type Notification struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
	Data      map[string]string `json:"data,omitempty"`
}

// previewLength is how much of a message body a notification shows
const previewLength = 50

// NotificationCenter keeps in-app notifications, newest first
type NotificationCenter struct {
	mu        sync.Mutex
	items     []Notification
	listeners map[int]func([]Notification)
	nextID    int
	now       func() time.Time
}

// NewNotificationCenter creates an empty center
func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{listeners: make(map[int]func([]Notification)), now: time.Now}
}

// Add stores a new unread notification and tells listeners
func (c *NotificationCenter) Add(kind, title, message string, data map[string]string) Notification {
	c.mu.Lock()
	n := Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Title:     title,
		Message:   message,
		Timestamp: c.now(),
		Data:      data,
	}
	c.items = append([]Notification{n}, c.items...)
	c.mu.Unlock()

	c.notify()
	return n
}

// NotifyMatch announces a new match
func (c *NotificationCenter) NotifyMatch(userName, userPhoto string) Notification {
	return c.Add(models.NotificationMatch, "It's a Match! 🎉", "You and "+userName+" want to be friends!",
		map[string]string{"userName": userName, "userPhoto": userPhoto})
}

// NotifyMessage announces a chat message, previewing its first 50 characters
func (c *NotificationCenter) NotifyMessage(userName, message string) Notification {
	preview := message
	if utf8.RuneCountInString(message) > previewLength {
		preview = string([]rune(message)[:previewLength]) + "..."
	}
	return c.Add(models.NotificationMessage, "New message from "+userName, preview,
		map[string]string{"userName": userName})
}

// NotifyLike announces that someone swiped right
func (c *NotificationCenter) NotifyLike(userName string) Notification {
	return c.Add(models.NotificationLike, "Someone likes you! 💙", userName+" swiped right on you!",
		map[string]string{"userName": userName})
}

// All returns a copy of the notifications, newest first
func (c *NotificationCenter) All() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

// UnreadCount counts unread notifications
func (c *NotificationCenter) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkAsRead marks one notification read
func (c *NotificationCenter) MarkAsRead(id string) {
	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
			found = true
			break
		}
	}
	c.mu.Unlock()

	if found {
		c.notify()
	}
}

// MarkAllAsRead marks every notification read
func (c *NotificationCenter) MarkAllAsRead() {
	c.mu.Lock()
	for i := range c.items {
		c.items[i].Read = true
	}
	c.mu.Unlock()
	c.notify()
}

// ClearAll removes every notification
func (c *NotificationCenter) ClearAll() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.notify()
}

// Subscribe calls fn with the full list after every change. The returned function unsubscribes.
func (c *NotificationCenter) Subscribe(fn func([]Notification)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *NotificationCenter) notify() {
	c.mu.Lock()
	items := append([]Notification(nil), c.items...)
	listeners := make([]func([]Notification), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(items)
	}
}
