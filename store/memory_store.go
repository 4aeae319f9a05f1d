package store

import (
	"context"
	"sort"
	"sync"

	"paldeck_server/models"
)

// MemoryStore implements Store in process memory. All operations are linearizable
// under one mutex, which gives the same conditional-write semantics as DynamoDB.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	profiles map[string]models.UserProfile
	swipes   map[string]models.SwipeRecord
	matches  map[string]models.MatchRecord
	messages map[string][]storedMessage
	seq      uint64
}

type storedMessage struct {
	models.MessageRecord
	seq uint64
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]models.Account),
		profiles: make(map[string]models.UserProfile),
		swipes:   make(map[string]models.SwipeRecord),
		matches:  make(map[string]models.MatchRecord),
		messages: make(map[string][]storedMessage),
	}
}

func (s *MemoryStore) CreateAccount(_ context.Context, acct models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acct.Email]; ok {
		return ErrConditionFailed
	}
	s.accounts[acct.Email] = acct
	return nil
}

func (s *MemoryStore) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &acct, nil
}

func (s *MemoryStore) CreateProfile(_ context.Context, p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; ok {
		return ErrConditionFailed
	}
	s.putProfileLocked(p)
	return nil
}

func (s *MemoryStore) PutProfile(_ context.Context, p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putProfileLocked(p)
	return nil
}

func (s *MemoryStore) putProfileLocked(p models.UserProfile) {
	p.Interests = append([]string(nil), p.Interests...)
	p.Photos = append([]string(nil), p.Photos...)
	s.profiles[p.ID] = p
}

func (s *MemoryStore) GetProfile(_ context.Context, id string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// ListProfiles pages in id order
func (s *MemoryStore) ListProfiles(_ context.Context, cursor string, limit int) ([]models.UserProfile, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		if id > cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	next := ""
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
		next = ids[len(ids)-1]
	}

	page := make([]models.UserProfile, 0, len(ids))
	for _, id := range ids {
		page = append(page, s.profiles[id])
	}
	return page, next, nil
}

func (s *MemoryStore) PutSwipe(_ context.Context, sw models.SwipeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw.PK = models.SwipePK(sw.Swiper)
	sw.SK = models.SwipeSK(sw.Swiped)
	key := sw.PK + "|" + sw.SK
	if _, ok := s.swipes[key]; ok {
		return ErrConditionFailed
	}
	s.swipes[key] = sw
	return nil
}

func (s *MemoryStore) GetSwipe(_ context.Context, swiper, swiped string) (*models.SwipeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw, ok := s.swipes[models.SwipePK(swiper)+"|"+models.SwipeSK(swiped)]
	if !ok {
		return nil, ErrNotFound
	}
	return &sw, nil
}

func (s *MemoryStore) ListSwipedIDs(_ context.Context, swiper string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{})
	for _, sw := range s.swipes {
		if sw.Swiper == swiper {
			ids[sw.Swiped] = struct{}{}
		}
	}
	return ids, nil
}

func (s *MemoryStore) CreateMatch(_ context.Context, m models.MatchRecord) (models.MatchRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.matches[m.ID]; ok {
		return existing, false, nil
	}
	s.matches[m.ID] = m
	return m, true, nil
}

func (s *MemoryStore) GetMatch(_ context.Context, id string) (*models.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) ListMatchesForUser(_ context.Context, userID string) ([]models.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []models.MatchRecord
	for _, m := range s.matches {
		if m.Has(userID) {
			matches = append(matches, m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (s *MemoryStore) PutMessage(_ context.Context, m models.MessageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.messages[m.MatchID] = append(s.messages[m.MatchID], storedMessage{MessageRecord: m, seq: s.seq})
	return nil
}

// ListMessages orders by creation time, ties broken by insertion order
func (s *MemoryStore) ListMessages(_ context.Context, matchID string) ([]models.MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := append([]storedMessage(nil), s.messages[matchID]...)
	sort.SliceStable(stored, func(i, j int) bool {
		if stored[i].CreatedAt.Equal(stored[j].CreatedAt) {
			return stored[i].seq < stored[j].seq
		}
		return stored[i].CreatedAt.Before(stored[j].CreatedAt)
	})

	out := make([]models.MessageRecord, len(stored))
	for i, m := range stored {
		out[i] = m.MessageRecord
	}
	return out, nil
}

func (s *MemoryStore) MarkMessagesRead(_ context.Context, matchID, readerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	msgs := s.messages[matchID]
	for i := range msgs {
		if msgs[i].Sender != readerID && !msgs[i].Read {
			msgs[i].Read = true
			updated++
		}
	}
	return updated, nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*DynamoStore)(nil)
