package client

import (
	"context"
	"errors"
	"math"
	"sync"

	"paldeck_server/models"
)

// SwipeThreshold is how far, in points, a card must be dragged to count as a swipe
const SwipeThreshold = 100.0

// RefillThreshold triggers a fetch of the next page when fewer unseen cards remain
const RefillThreshold = 2

var (
	// ErrDeckEmpty is returned when there is no card to swipe
	ErrDeckEmpty = errors.New("no more profiles")
	// ErrSwipeInFlight is returned while the previous swipe is still being saved
	ErrSwipeInFlight = errors.New("swipe already in progress")
)

// DeckAPI is what the deck needs from the server
type DeckAPI interface {
	Deck(ctx context.Context, f models.DiscoveryFilters, cursor string, limit int) (*DeckPage, error)
	Swipe(ctx context.Context, swipedID, direction string) (*models.SwipeResponse, error)
}

// DragResult says what a released drag did
type DragResult struct {
	Committed bool
	Direction string
	Card      models.SwipeCard
	Match     *models.MatchRecord
}

// Deck is the ordered list of candidate cards and the position of the top card.
// A card is committed once; a failed save leaves it on top.
type Deck struct {
	api      DeckAPI
	filters  models.DiscoveryFilters
	pageSize int

	mu        sync.Mutex
	cards     []models.SwipeCard
	index     int
	ids       map[string]struct{}
	cursor    string
	exhausted bool
	inFlight  bool
	refilling bool
	// bumped when Load replaces the cards; continuations started under an older
	// value drop their result
	generation uint64
	loads      uint64
}

// NewDeck creates an empty deck; call Load before swiping
func NewDeck(api DeckAPI, filters models.DiscoveryFilters, pageSize int) *Deck {
	return &Deck{api: api, filters: filters, pageSize: pageSize, ids: make(map[string]struct{})}
}

// Load discards the current cards and fetches the first page
func (d *Deck) Load(ctx context.Context) error {
	d.mu.Lock()
	d.loads++
	seq := d.loads
	filters := d.filters
	d.mu.Unlock()

	page, err := d.api.Deck(ctx, filters, "", d.pageSize)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.loads {
		return nil
	}
	d.generation++
	d.cards = nil
	d.index = 0
	d.refilling = false
	d.ids = make(map[string]struct{})
	d.appendLocked(page)
	return nil
}

// SetFilters changes the filters and reloads
func (d *Deck) SetFilters(ctx context.Context, f models.DiscoveryFilters) error {
	d.mu.Lock()
	d.filters = f
	d.mu.Unlock()
	return d.Load(ctx)
}

// Current returns the top card
func (d *Deck) Current() (models.SwipeCard, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index >= len(d.cards) {
		return models.SwipeCard{}, false
	}
	return d.cards[d.index], true
}

// Remaining counts the unseen cards, the top one included
func (d *Deck) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cards) - d.index
}

// Drag handles the release of a horizontal drag of dx points. Beyond the threshold
// the card is swiped right for dx > 0 and left for dx < 0; otherwise it snaps back.
func (d *Deck) Drag(ctx context.Context, dx float64) (DragResult, error) {
	if math.Abs(dx) <= SwipeThreshold {
		return DragResult{}, nil
	}
	direction := models.DirectionLeft
	if dx > 0 {
		direction = models.DirectionRight
	}
	return d.Swipe(ctx, direction)
}

// Swipe commits the top card in direction
func (d *Deck) Swipe(ctx context.Context, direction string) (DragResult, error) {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return DragResult{}, ErrSwipeInFlight
	}
	if d.index >= len(d.cards) {
		d.mu.Unlock()
		return DragResult{}, ErrDeckEmpty
	}
	card := d.cards[d.index]
	gen := d.generation
	d.inFlight = true
	d.mu.Unlock()

	resp, err := d.api.Swipe(ctx, card.ID, direction)

	d.mu.Lock()
	d.inFlight = false
	if err != nil {
		d.mu.Unlock()
		return DragResult{}, err
	}
	result := DragResult{Committed: true, Direction: direction, Card: card, Match: resp.Match}
	if gen != d.generation {
		// the deck was reloaded meanwhile; its top card is still undecided
		d.mu.Unlock()
		return result, nil
	}
	d.index++
	d.mu.Unlock()

	// a failed refill is retried on the next swipe
	_ = d.refill(ctx)

	return result, nil
}

func (d *Deck) refill(ctx context.Context) error {
	d.mu.Lock()
	if d.exhausted || d.refilling || len(d.cards)-d.index >= RefillThreshold {
		d.mu.Unlock()
		return nil
	}
	d.refilling = true
	gen := d.generation
	cursor := d.cursor
	filters := d.filters
	d.mu.Unlock()

	page, err := d.api.Deck(ctx, filters, cursor, d.pageSize)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		return nil
	}
	d.refilling = false
	if err != nil {
		return err
	}
	d.appendLocked(page)
	return nil
}

func (d *Deck) appendLocked(page *DeckPage) {
	for _, c := range page.Cards {
		if _, dup := d.ids[c.ID]; dup {
			continue
		}
		d.ids[c.ID] = struct{}{}
		d.cards = append(d.cards, c)
	}
	d.cursor = page.Next
	d.exhausted = page.Next == ""
}
