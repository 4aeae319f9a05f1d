package models

import "time"

// Match is the client view of a MatchRecord: the other participant's profile plus chat state
type Match struct {
	ID          string         `json:"id"`
	User        UserProfile    `json:"user"`
	MatchedAt   time.Time      `json:"matchedAt"`
	LastMessage *MessageRecord `json:"lastMessage,omitempty"`
	Unread      int            `json:"unread"`
}
