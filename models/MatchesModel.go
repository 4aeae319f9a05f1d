package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchRecord is a mutual right-swipe between two profiles. The order of User1 and User2
// carries no meaning; PairKey is the same whichever side created it.
type MatchRecord struct {
	ID        string    `dynamodbav:"id" json:"id"`           // ✅ Partition Key, derived from PairKey
	User1     string    `dynamodbav:"user1" json:"user1"`     // Indexed via user1-index
	User2     string    `dynamodbav:"user2" json:"user2"`     // Indexed via user2-index
	PairKey   string    `dynamodbav:"pairKey" json:"pairKey"` // min(a,b):max(a,b)
	Status    string    `dynamodbav:"status" json:"status"`   // pending, matched, rejected
	CreatedAt time.Time `dynamodbav:"created" json:"created"`
	UpdatedAt time.Time `dynamodbav:"updated" json:"updated"`
}

// Other returns the participant that is not userID
func (m MatchRecord) Other(userID string) string {
	if m.User1 == userID {
		return m.User2
	}
	return m.User1
}

// Has reports whether userID takes part in the match
func (m MatchRecord) Has(userID string) bool {
	return m.User1 == userID || m.User2 == userID
}

var matchNamespace = uuid.MustParse("6f1c9a52-3c0e-4f57-9d0c-5b8d2c1e7a44")

// PairKey is the unordered key of two profile ids
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// MatchIDForPair derives the match id of an unordered pair, so both sides of a
// concurrent double right-swipe compute the same id
func MatchIDForPair(a, b string) string {
	return uuid.NewSHA1(matchNamespace, []byte(PairKey(a, b))).String()
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "Matches"

// GSI names on the matches table
const (
	User1Index = "user1-index"
	User2Index = "user2-index"
)
