package models

import "time"

// UserProfile is the public profile of one account. ID equals the owning account's ID.
type UserProfile struct {
	ID        string    `dynamodbav:"id" json:"id"`                                   // ✅ Partition Key
	Name      string    `dynamodbav:"name" json:"name"`                               // Display name
	Age       int       `dynamodbav:"age" json:"age"`                                 // Must be >= the configured minimum
	Location  string    `dynamodbav:"location" json:"location"`                       // Free text "City, Country"
	Bio       string    `dynamodbav:"bio" json:"bio"`                                 // Short biography
	Interests []string  `dynamodbav:"interests" json:"interests"`                     // At least MinInterests tags
	Photo     string    `dynamodbav:"photo,omitempty" json:"photo,omitempty"`         // Primary photo key or URL
	Photos    []string  `dynamodbav:"photos,omitempty" json:"photos,omitempty"`       // Additional photos
	Latitude  float64   `dynamodbav:"latitude,omitempty" json:"latitude,omitempty"`   // Optional, used for card distance
	Longitude float64   `dynamodbav:"longitude,omitempty" json:"longitude,omitempty"` // Optional, used for card distance
	CreatedAt time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// HasCoordinates reports whether the profile carries a usable position
func (p UserProfile) HasCoordinates() bool {
	return p.Latitude != 0 || p.Longitude != 0
}

// HasInterest reports whether tag is among the profile's interests, ignoring case
func (p UserProfile) HasInterest(tag string) bool {
	for _, i := range p.Interests {
		if equalFold(i, tag) {
			return true
		}
	}
	return false
}

// SwipeCard is a candidate profile as shown in the deck. Never persisted.
type SwipeCard struct {
	UserProfile
	Distance float64 `json:"distance"` // meters, 0 when unknown
}

// DiscoveryFilters narrows the candidate deck
type DiscoveryFilters struct {
	MinAge      int      `json:"minAge,omitempty"`
	MaxAge      int      `json:"maxAge,omitempty"`
	MaxDistance float64  `json:"maxDistance,omitempty"` // kilometers, 0 = unlimited
	Interests   []string `json:"interests,omitempty"`   // any-of
	Location    string   `json:"location,omitempty"`    // case-insensitive substring
}

// ProfilesTable is the DynamoDB table name for user profiles
const ProfilesTable = "Profiles"
