package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"paldeck_server/metrics"
	"paldeck_server/models"
	"paldeck_server/store"
)

// SwipeResult is the outcome of one swipe. Match is nil when the swipe did not
// produce a match; Created is true only when this call inserted the match.
type SwipeResult struct {
	Swipe   models.SwipeRecord
	Match   *models.MatchRecord
	Created bool
}

// SwipeService records swipe decisions and detects mutual right swipes
type SwipeService struct {
	Store   store.Store
	Matches *MatchService
	Guard   SwipeGuard
	Log     *zap.Logger

	now func() time.Time
}

// NewSwipeService creates a SwipeService. A nil guard gets a process-local one.
func NewSwipeService(s store.Store, matches *MatchService, guard SwipeGuard, log *zap.Logger) *SwipeService {
	if guard == nil {
		guard = NewMemorySwipeGuard()
	}
	return &SwipeService{Store: s, Matches: matches, Guard: guard, Log: log, now: time.Now}
}

// RecordSwipe stores the swiper's decision on swiped. For a right swipe it then reads
// the reciprocal decision and, if that is also right, makes sure the match exists.
// Repeating the same decision is a retry and runs the match check again.
func (s *SwipeService) RecordSwipe(ctx context.Context, swiperID, swipedID, direction string) (*SwipeResult, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))
	if !models.ValidDirection(direction) {
		return nil, invalid("direction", "must be left or right")
	}
	if swipedID == "" {
		return nil, invalid("swipedId", "is required")
	}
	if swiperID == swipedID {
		return nil, invalid("swipedId", "cannot swipe on yourself")
	}

	if _, err := s.Store.GetProfile(ctx, swiperID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileIncomplete
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if _, err := s.Store.GetProfile(ctx, swipedID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	release, err := s.Guard.Acquire(ctx, swipeGuardKey(swiperID, swipedID))
	if err != nil {
		return nil, err
	}
	defer release()

	swipe, err := s.writeSwipe(ctx, swiperID, swipedID, direction)
	if err != nil {
		return nil, err
	}

	result := &SwipeResult{Swipe: *swipe}
	if direction != models.DirectionRight {
		return result, nil
	}

	reciprocal, err := s.Store.GetSwipe(ctx, swipedID, swiperID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to check reciprocal swipe: %w", err)
	}
	if reciprocal.Direction != models.DirectionRight {
		return result, nil
	}

	match, created, err := s.Matches.EnsureMatch(ctx, swiperID, swipedID)
	if err != nil {
		return nil, err
	}
	result.Match = match
	result.Created = created
	return result, nil
}

func (s *SwipeService) writeSwipe(ctx context.Context, swiperID, swipedID, direction string) (*models.SwipeRecord, error) {
	record := models.SwipeRecord{
		PK:        models.SwipePK(swiperID),
		SK:        models.SwipeSK(swipedID),
		ID:        uuid.NewString(),
		Swiper:    swiperID,
		Swiped:    swipedID,
		Direction: direction,
		CreatedAt: s.now().UTC(),
	}

	err := s.Store.PutSwipe(ctx, record)
	if err == nil {
		metrics.SwipeRecorded(direction)
		s.Log.Info("👉 swipe recorded",
			zap.String("swiper", swiperID),
			zap.String("swiped", swipedID),
			zap.String("direction", direction))
		return &record, nil
	}
	if !errors.Is(err, store.ErrConditionFailed) {
		return nil, fmt.Errorf("failed to save swipe: %w", err)
	}

	existing, err := s.Store.GetSwipe(ctx, swiperID, swipedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing swipe: %w", err)
	}
	if existing.Direction != direction {
		return nil, ErrAlreadySwiped
	}
	s.Log.Debug("🔁 repeated swipe", zap.String("swiper", swiperID), zap.String("swiped", swipedID))
	return existing, nil
}
