package models

import "time"

// MessageRecord is one chat message inside a match. ID is a ULID, so ordering by
// ID is ordering by creation.
type MessageRecord struct {
	MatchID   string    `dynamodbav:"matchId" json:"matchId"` // ✅ Partition Key
	ID        string    `dynamodbav:"id" json:"id"`           // ✅ Sort Key
	Sender    string    `dynamodbav:"sender" json:"sender"`
	Text      string    `dynamodbav:"text" json:"text"`
	Read      bool      `dynamodbav:"read" json:"read"`
	CreatedAt time.Time `dynamodbav:"created" json:"created"`
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
