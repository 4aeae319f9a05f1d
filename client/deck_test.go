package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paldeck_server/models"
)

type fakeDeckAPI struct {
	mu     sync.Mutex
	pages  map[string]*DeckPage // cursor -> page
	swipes []string
	fail   error
	block  chan struct{}
	// holds follow-up page fetches (non-empty cursor) until closed
	nextBlock chan struct{}
	fetches   []string
}

func (f *fakeDeckAPI) Deck(_ context.Context, _ models.DiscoveryFilters, cursor string, _ int) (*DeckPage, error) {
	if cursor != "" && f.nextBlock != nil {
		<-f.nextBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, cursor)
	if p, ok := f.pages[cursor]; ok {
		return p, nil
	}
	return &DeckPage{}, nil
}

func (f *fakeDeckAPI) Swipe(_ context.Context, swipedID, direction string) (*models.SwipeResponse, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.swipes = append(f.swipes, swipedID+":"+direction)
	resp := &models.SwipeResponse{Swipe: models.SwipeRecord{Swiper: "me", Swiped: swipedID, Direction: direction}}
	if swipedID == "match-me" && direction == models.DirectionRight {
		resp.Match = &models.MatchRecord{ID: "m1", User1: "match-me", User2: "me", Status: models.StatusMatched}
	}
	return resp, nil
}

func cards(ids ...string) []models.SwipeCard {
	out := make([]models.SwipeCard, len(ids))
	for i, id := range ids {
		out[i] = models.SwipeCard{UserProfile: models.UserProfile{ID: id, Name: fmt.Sprintf("User %s", id)}}
	}
	return out
}

func TestDeckDragThreshold(t *testing.T) {
	api := &fakeDeckAPI{pages: map[string]*DeckPage{"": {Cards: cards("a", "b", "c", "d")}}}
	deck := NewDeck(api, models.DiscoveryFilters{}, 10)
	require.NoError(t, deck.Load(context.Background()))

	for _, dx := range []float64{0, 50, -99, 100, -100} {
		res, err := deck.Drag(context.Background(), dx)
		require.NoError(t, err)
		assert.False(t, res.Committed, "dx=%v should snap back", dx)
	}
	assert.Empty(t, api.swipes)

	res, err := deck.Drag(context.Background(), 101)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, models.DirectionRight, res.Direction)
	assert.Equal(t, "a", res.Card.ID)

	res, err = deck.Drag(context.Background(), -150)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionLeft, res.Direction)
	assert.Equal(t, "b", res.Card.ID)

	assert.Equal(t, []string{"a:right", "b:left"}, api.swipes)
	top, ok := deck.Current()
	require.True(t, ok)
	assert.Equal(t, "c", top.ID)
}

func TestDeckFailedSwipeDoesNotAdvance(t *testing.T) {
	api := &fakeDeckAPI{pages: map[string]*DeckPage{"": {Cards: cards("a", "b", "c")}}}
	deck := NewDeck(api, models.DiscoveryFilters{}, 10)
	require.NoError(t, deck.Load(context.Background()))

	api.fail = errors.New("network down")
	_, err := deck.Swipe(context.Background(), models.DirectionRight)
	require.Error(t, err)

	top, ok := deck.Current()
	require.True(t, ok)
	assert.Equal(t, "a", top.ID)
	assert.Equal(t, 3, deck.Remaining())

	api.fail = nil
	res, err := deck.Swipe(context.Background(), models.DirectionRight)
	require.NoError(t, err)
	assert.Equal(t, "a", res.Card.ID)
}

func TestDeckRejectsSwipeWhileInFlight(t *testing.T) {
	api := &fakeDeckAPI{
		pages: map[string]*DeckPage{"": {Cards: cards("a", "b", "c")}},
		block: make(chan struct{}),
	}
	deck := NewDeck(api, models.DiscoveryFilters{}, 10)
	require.NoError(t, deck.Load(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := deck.Swipe(context.Background(), models.DirectionRight)
		done <- err
	}()

	require.Eventually(t, func() bool {
		deck.mu.Lock()
		defer deck.mu.Unlock()
		return deck.inFlight
	}, time.Second, time.Millisecond)

	_, err := deck.Drag(context.Background(), 200)
	assert.ErrorIs(t, err, ErrSwipeInFlight)

	close(api.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"a:right"}, api.swipes)
	assert.Equal(t, 2, deck.Remaining())
}

func TestDeckRefillsAndDeduplicates(t *testing.T) {
	api := &fakeDeckAPI{pages: map[string]*DeckPage{
		"":  {Cards: cards("a", "b", "c"), Next: "c"},
		"c": {Cards: cards("c", "d", "e")},
	}}
	deck := NewDeck(api, models.DiscoveryFilters{}, 3)
	require.NoError(t, deck.Load(context.Background()))

	_, err := deck.Swipe(context.Background(), models.DirectionLeft) // a
	require.NoError(t, err)
	assert.Equal(t, []string{""}, api.fetches, "two unseen cards left, no refill yet")

	_, err = deck.Swipe(context.Background(), models.DirectionLeft) // b
	require.NoError(t, err)
	assert.Equal(t, []string{"", "c"}, api.fetches)
	assert.Equal(t, 3, deck.Remaining()) // c, d, e

	for _, want := range []string{"c", "d", "e"} {
		res, err := deck.Swipe(context.Background(), models.DirectionLeft)
		require.NoError(t, err)
		assert.Equal(t, want, res.Card.ID)
	}

	_, err = deck.Swipe(context.Background(), models.DirectionLeft)
	assert.ErrorIs(t, err, ErrDeckEmpty)
	assert.Len(t, api.fetches, 2, "exhausted deck does not refetch")
}

func TestDeckReportsMatch(t *testing.T) {
	api := &fakeDeckAPI{pages: map[string]*DeckPage{"": {Cards: cards("match-me")}}}
	deck := NewDeck(api, models.DiscoveryFilters{}, 10)
	require.NoError(t, deck.Load(context.Background()))

	res, err := deck.Drag(context.Background(), 120)
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, "m1", res.Match.ID)
}

func TestDeckReloadDuringSwipeKeepsNewTopCard(t *testing.T) {
	api := &fakeDeckAPI{
		pages: map[string]*DeckPage{"": {Cards: cards("a", "b", "c", "d")}},
		block: make(chan struct{}),
	}
	deck := NewDeck(api, models.DiscoveryFilters{}, 10)
	require.NoError(t, deck.Load(context.Background()))

	done := make(chan DragResult, 1)
	go func() {
		res, err := deck.Swipe(context.Background(), models.DirectionRight)
		assert.NoError(t, err)
		done <- res
	}()
	require.Eventually(t, func() bool {
		deck.mu.Lock()
		defer deck.mu.Unlock()
		return deck.inFlight
	}, time.Second, time.Millisecond)

	api.mu.Lock()
	api.pages[""] = &DeckPage{Cards: cards("x", "y", "z")}
	api.mu.Unlock()
	require.NoError(t, deck.SetFilters(context.Background(), models.DiscoveryFilters{MinAge: 25}))

	close(api.block)
	res := <-done
	assert.True(t, res.Committed)
	assert.Equal(t, "a", res.Card.ID)

	top, ok := deck.Current()
	require.True(t, ok)
	assert.Equal(t, "x", top.ID)
	assert.Equal(t, 3, deck.Remaining())
}

func TestDeckReloadDropsStaleRefill(t *testing.T) {
	api := &fakeDeckAPI{
		pages: map[string]*DeckPage{
			"":    {Cards: cards("a", "b"), Next: "b"},
			"b":   {Cards: cards("old1", "old2")},
			"new": {Cards: cards("n3")},
		},
		nextBlock: make(chan struct{}),
	}
	deck := NewDeck(api, models.DiscoveryFilters{}, 2)
	require.NoError(t, deck.Load(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := deck.Swipe(context.Background(), models.DirectionLeft) // a, then refill from "b"
		done <- err
	}()
	require.Eventually(t, func() bool {
		deck.mu.Lock()
		defer deck.mu.Unlock()
		return deck.refilling
	}, time.Second, time.Millisecond)

	api.mu.Lock()
	api.pages[""] = &DeckPage{Cards: cards("n1", "n2"), Next: "new"}
	api.mu.Unlock()
	require.NoError(t, deck.SetFilters(context.Background(), models.DiscoveryFilters{Location: "Berlin"}))

	close(api.nextBlock)
	require.NoError(t, <-done)

	deck.mu.Lock()
	ids := make([]string, 0, len(deck.cards))
	for _, c := range deck.cards {
		ids = append(ids, c.ID)
	}
	cursor := deck.cursor
	deck.mu.Unlock()
	assert.Equal(t, []string{"n1", "n2"}, ids)
	assert.Equal(t, "new", cursor)

	top, ok := deck.Current()
	require.True(t, ok)
	assert.Equal(t, "n1", top.ID)
}
