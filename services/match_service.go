package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"paldeck_server/metrics"
	"paldeck_server/models"
	"paldeck_server/store"
)

// MatchService creates and reads matches
type MatchService struct {
	Store store.Store
	Log   *zap.Logger

	now func() time.Time
}

// NewMatchService creates a MatchService
func NewMatchService(s store.Store, log *zap.Logger) *MatchService {
	return &MatchService{Store: s, Log: log, now: time.Now}
}

// EnsureMatch creates the match for a pair or returns the one that already exists.
// created is true only for the call that actually inserted it.
func (s *MatchService) EnsureMatch(ctx context.Context, a, b string) (*models.MatchRecord, bool, error) {
	now := s.now().UTC()
	user1, user2 := a, b
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	record := models.MatchRecord{
		ID:        models.MatchIDForPair(a, b),
		User1:     user1,
		User2:     user2,
		PairKey:   models.PairKey(a, b),
		Status:    models.StatusMatched,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, created, err := s.Store.CreateMatch(ctx, record)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}
	if created {
		metrics.MatchCreated()
		s.Log.Info("💘 match created", zap.String("matchId", stored.ID), zap.String("user1", user1), zap.String("user2", user2))
	}
	return &stored, created, nil
}

// GetMatch fetches one match
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*models.MatchRecord, error) {
	m, err := s.Store.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	return m, nil
}

// GetMatchForUser fetches a match and checks that userID takes part in it
func (s *MatchService) GetMatchForUser(ctx context.Context, matchID, userID string) (*models.MatchRecord, error) {
	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.Has(userID) {
		return nil, ErrForbidden
	}
	return m, nil
}

// IsParticipant reports whether userID takes part in the match
func (s *MatchService) IsParticipant(ctx context.Context, matchID, userID string) (bool, error) {
	_, err := s.GetMatchForUser(ctx, matchID, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrMatchNotFound):
		return false, nil
	default:
		return false, err
	}
}

// ListMatches returns the user's matches, newest first, each joined with the other
// profile, the last message and the unread count
func (s *MatchService) ListMatches(ctx context.Context, userID string) ([]models.Match, error) {
	records, err := s.Store.ListMatchesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	matches := make([]models.Match, 0, len(records))
	for _, r := range records {
		if r.Status != models.StatusMatched {
			continue
		}
		m, err := s.view(ctx, r, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.Log.Warn("⚠️ skipping match with missing profile", zap.String("matchId", r.ID))
				continue
			}
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, nil
}

// GetMatchView returns one match as the client sees it
func (s *MatchService) GetMatchView(ctx context.Context, matchID, userID string) (*models.Match, error) {
	r, err := s.GetMatchForUser(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	m, err := s.view(ctx, *r, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return m, err
}

func (s *MatchService) view(ctx context.Context, r models.MatchRecord, userID string) (*models.Match, error) {
	other, err := s.Store.GetProfile(ctx, r.Other(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	msgs, err := s.Store.ListMessages(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	m := &models.Match{ID: r.ID, User: *other, MatchedAt: r.CreatedAt}
	for i := range msgs {
		if msgs[i].Sender != userID && !msgs[i].Read {
			m.Unread++
		}
	}
	if len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		m.LastMessage = &last
	}
	return m, nil
}
