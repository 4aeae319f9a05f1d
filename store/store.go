// Package store is the persistence boundary of the server. Services talk to the
// Store interface; DynamoStore backs it in deployment and MemoryStore in tests
// and local development.
package store

import (
	"context"
	"errors"

	"paldeck_server/models"
)

var (
	// ErrNotFound is returned when a keyed lookup matches nothing
	ErrNotFound = errors.New("item not found")
	// ErrConditionFailed is returned when a conditional write finds the item already present
	ErrConditionFailed = errors.New("condition failed")
)

// AccountStore persists login accounts keyed by email
type AccountStore interface {
	CreateAccount(ctx context.Context, acct models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// ProfileStore persists user profiles
type ProfileStore interface {
	// CreateProfile fails with ErrConditionFailed if a profile with the same id exists
	CreateProfile(ctx context.Context, p models.UserProfile) error
	PutProfile(ctx context.Context, p models.UserProfile) error
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	// ListProfiles pages through all profiles. An empty next cursor means the end was reached.
	ListProfiles(ctx context.Context, cursor string, limit int) ([]models.UserProfile, string, error)
}

// SwipeStore persists swipe decisions, one per directed pair
type SwipeStore interface {
	// PutSwipe fails with ErrConditionFailed if the swiper already swiped on the target
	PutSwipe(ctx context.Context, s models.SwipeRecord) error
	// GetSwipe is a strongly consistent read
	GetSwipe(ctx context.Context, swiper, swiped string) (*models.SwipeRecord, error)
	ListSwipedIDs(ctx context.Context, swiper string) (map[string]struct{}, error)
}

// MatchStore persists matches
type MatchStore interface {
	// CreateMatch inserts m unless a match with the same id exists, in which case the
	// stored record is returned with created=false
	CreateMatch(ctx context.Context, m models.MatchRecord) (stored models.MatchRecord, created bool, err error)
	GetMatch(ctx context.Context, id string) (*models.MatchRecord, error)
	ListMatchesForUser(ctx context.Context, userID string) ([]models.MatchRecord, error)
}

// MessageStore persists chat messages
type MessageStore interface {
	PutMessage(ctx context.Context, m models.MessageRecord) error
	// ListMessages returns a match's messages ordered by id ascending
	ListMessages(ctx context.Context, matchID string) ([]models.MessageRecord, error)
	// MarkMessagesRead sets read=true on every unread message in the match not sent by readerID
	MarkMessagesRead(ctx context.Context, matchID, readerID string) (int, error)
}

// Store is everything the services need
type Store interface {
	AccountStore
	ProfileStore
	SwipeStore
	MatchStore
	MessageStore
}

// Tables names the DynamoDB tables
type Tables struct {
	Profiles string
	Swipes   string
	Matches  string
	Messages string
	Accounts string
}

// DefaultTables uses the table names declared in models
func DefaultTables() Tables {
	return Tables{
		Profiles: models.ProfilesTable,
		Swipes:   models.SwipesTable,
		Matches:  models.MatchesTable,
		Messages: models.MessagesTable,
		Accounts: models.AccountsTable,
	}
}
