package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paldeck_server/models"
	"paldeck_server/store"
)

// spyStore counts reciprocal swipe reads
type spyStore struct {
	*store.MemoryStore

	mu       sync.Mutex
	getSwipe [][2]string
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: store.NewMemoryStore()}
}

func (s *spyStore) GetSwipe(ctx context.Context, swiper, swiped string) (*models.SwipeRecord, error) {
	s.mu.Lock()
	s.getSwipe = append(s.getSwipe, [2]string{swiper, swiped})
	s.mu.Unlock()
	return s.MemoryStore.GetSwipe(ctx, swiper, swiped)
}

func (s *spyStore) swipeReads(swiper, swiped string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.getSwipe {
		if c[0] == swiper && c[1] == swiped {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []models.MessageRecord
}

func (p *recordingPublisher) Publish(_ string, msg models.MessageRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
}

type testEnv struct {
	store    *spyStore
	profiles *ProfileService
	matches  *MatchService
	swipes   *SwipeService
	chat     *ChatService
	pub      *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	st := newSpyStore()
	matches := NewMatchService(st, log)
	pub := &recordingPublisher{}
	return &testEnv{
		store:    st,
		profiles: NewProfileService(st, st, 18, log),
		matches:  matches,
		swipes:   NewSwipeService(st, matches, NewMemorySwipeGuard(), log),
		chat:     NewChatService(st, matches, pub, log),
		pub:      pub,
	}
}

func validProfile(name string) models.UserProfile {
	return models.UserProfile{
		Name:      name,
		Age:       25,
		Location:  "Lisbon, Portugal",
		Bio:       "Here for board games and long walks.",
		Interests: []string{"hiking", "chess", "cooking"},
	}
}

func (e *testEnv) addProfile(t *testing.T, id string, mutate ...func(*models.UserProfile)) models.UserProfile {
	t.Helper()
	p := validProfile("user " + id)
	for _, m := range mutate {
		m(&p)
	}
	created, err := e.profiles.CreateProfile(context.Background(), id, p)
	require.NoError(t, err)
	return *created
}

func (e *testEnv) match(t *testing.T, a, b string) *models.MatchRecord {
	t.Helper()
	ctx := context.Background()
	_, err := e.swipes.RecordSwipe(ctx, a, b, models.DirectionRight)
	require.NoError(t, err)
	res, err := e.swipes.RecordSwipe(ctx, b, a, models.DirectionRight)
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	return res.Match
}
