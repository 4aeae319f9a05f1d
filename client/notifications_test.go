package client

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paldeck_server/models"
)

func TestNotificationCenter(t *testing.T) {
	c := NewNotificationCenter()

	var calls int
	var last []Notification
	unsubscribe := c.Subscribe(func(items []Notification) {
		calls++
		last = items
	})

	match := c.NotifyMatch("Alex Chen", "alex.jpg")
	assert.Equal(t, models.NotificationMatch, match.Type)
	assert.Equal(t, "You and Alex Chen want to be friends!", match.Message)

	msg := c.NotifyMessage("Alex Chen", strings.Repeat("a", 60))
	assert.Equal(t, strings.Repeat("a", 50)+"...", msg.Message)
	short := c.NotifyMessage("Alex Chen", "hi")
	assert.Equal(t, "hi", short.Message)

	like := c.NotifyLike("Sam")
	assert.Equal(t, "Sam swiped right on you!", like.Message)

	require.Len(t, last, 4)
	assert.Equal(t, like.ID, last[0].ID, "newest first")
	assert.Equal(t, 4, c.UnreadCount())

	c.MarkAsRead(match.ID)
	assert.Equal(t, 3, c.UnreadCount())
	c.MarkAsRead("unknown")

	c.MarkAllAsRead()
	assert.Zero(t, c.UnreadCount())

	before := calls
	unsubscribe()
	c.ClearAll()
	assert.Empty(t, c.All())
	assert.Equal(t, before, calls)
}

func TestNotificationIDsAreUnique(t *testing.T) {
	c := NewNotificationCenter()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		n := c.Add(models.NotificationInfo, "Tip", "swipe right to like", nil)
		_, err := uuid.Parse(n.ID)
		require.NoError(t, err)
		_, dup := seen[n.ID]
		require.False(t, dup, "duplicate id %s", n.ID)
		seen[n.ID] = struct{}{}
	}
	assert.Equal(t, 100, c.UnreadCount())
}
