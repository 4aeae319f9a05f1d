package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"paldeck_server/models"
	"paldeck_server/store"
	"paldeck_server/utils"
)

// DefaultDeckSize is the candidate page size when the caller does not ask for one
const DefaultDeckSize = 20

// MaxDeckSize caps a single candidate page
const MaxDeckSize = 100

// CandidatePage is one page of the discovery deck. Next is empty once every
// profile has been considered.
type CandidatePage struct {
	Cards []models.SwipeCard `json:"cards"`
	Next  string             `json:"next,omitempty"`
}

// ProfileService manages user profiles and builds the discovery deck
type ProfileService struct {
	Profiles store.ProfileStore
	Swipes   store.SwipeStore
	MinAge   int
	Log      *zap.Logger

	now func() time.Time
}

// NewProfileService creates a ProfileService
func NewProfileService(profiles store.ProfileStore, swipes store.SwipeStore, minAge int, log *zap.Logger) *ProfileService {
	return &ProfileService{Profiles: profiles, Swipes: swipes, MinAge: minAge, Log: log, now: time.Now}
}

// CreateProfile stores the first profile of an account. The profile id is always the owner id.
func (s *ProfileService) CreateProfile(ctx context.Context, ownerID string, p models.UserProfile) (*models.UserProfile, error) {
	if err := ValidateProfile(&p, s.MinAge); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p.ID = ownerID
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.Profiles.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.Log.Info("✅ profile created", zap.String("userId", ownerID), zap.Int("interests", len(p.Interests)))
	return &p, nil
}

// UpdateProfile replaces the owner's profile
func (s *ProfileService) UpdateProfile(ctx context.Context, ownerID string, p models.UserProfile) (*models.UserProfile, error) {
	if err := ValidateProfile(&p, s.MinAge); err != nil {
		return nil, err
	}

	existing, err := s.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	p.ID = ownerID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now().UTC()
	if err := s.Profiles.PutProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.Log.Info("✏️ profile updated", zap.String("userId", ownerID))
	return &p, nil
}

// GetProfile fetches one profile
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	p, err := s.Profiles.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// GetCandidates returns the next page of profiles the user has not swiped on yet.
// cursor is the Next value of the previous page, or empty to start over.
func (s *ProfileService) GetCandidates(ctx context.Context, userID string, filters models.DiscoveryFilters, cursor string, limit int) (*CandidatePage, error) {
	if limit <= 0 {
		limit = DefaultDeckSize
	}
	if limit > MaxDeckSize {
		limit = MaxDeckSize
	}

	viewer, err := s.Profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileIncomplete
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	swiped, err := s.Swipes.ListSwipedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load swipes: %w", err)
	}

	page := &CandidatePage{Cards: []models.SwipeCard{}}
	for {
		profiles, next, err := s.Profiles.ListProfiles(ctx, cursor, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}

		for _, p := range profiles {
			cursor = p.ID
			if p.ID == userID {
				continue
			}
			if _, done := swiped[p.ID]; done {
				continue
			}
			card := newSwipeCard(viewer, p)
			if !matchesFilters(card, filters) {
				continue
			}
			page.Cards = append(page.Cards, card)
			if len(page.Cards) == limit {
				page.Next = cursor
				return page, nil
			}
		}

		if next == "" {
			return page, nil
		}
		cursor = next
	}
}

func newSwipeCard(viewer *models.UserProfile, p models.UserProfile) models.SwipeCard {
	card := models.SwipeCard{UserProfile: p}
	if viewer.HasCoordinates() && p.HasCoordinates() {
		card.Distance = utils.CalculateDistance(viewer.Latitude, viewer.Longitude, p.Latitude, p.Longitude) * 1000
	}
	return card
}

func matchesFilters(card models.SwipeCard, f models.DiscoveryFilters) bool {
	if f.MinAge > 0 && card.Age < f.MinAge {
		return false
	}
	if f.MaxAge > 0 && card.Age > f.MaxAge {
		return false
	}
	// cards without a known distance are kept
	if f.MaxDistance > 0 && card.Distance > f.MaxDistance*1000 {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(card.Location), strings.ToLower(strings.TrimSpace(f.Location))) {
		return false
	}
	if len(f.Interests) > 0 {
		for _, tag := range f.Interests {
			if card.HasInterest(tag) {
				return true
			}
		}
		return false
	}
	return true
}
