package models

// Swipe directions
const (
	DirectionLeft  = "left"
	DirectionRight = "right"
)

// Match statuses. Nothing transitions a match to rejected today; the value is kept
// so stored records written by other clients still decode.
const (
	StatusPending  = "pending"
	StatusMatched  = "matched"
	StatusRejected = "rejected"
)

// In-app notification types
const (
	NotificationMatch   = "match"
	NotificationMessage = "message"
	NotificationLike    = "like"
	NotificationInfo    = "info"
)

// MinInterests is how many interests a complete profile carries
const MinInterests = 3

// MaxMessageLength caps chat message text, counted in runes
const MaxMessageLength = 2000

// ValidDirection reports whether d is a known swipe direction
func ValidDirection(d string) bool {
	return d == DirectionLeft || d == DirectionRight
}
