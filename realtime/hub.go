// Package realtime fans chat messages out to whoever is listening on a match.
package realtime

import (
	"sync"

	"go.uber.org/zap"

	"paldeck_server/metrics"
	"paldeck_server/models"
)

// SubscriberBuffer is how many undelivered messages a subscriber may lag behind
const SubscriberBuffer = 64

// Sink receives every published message, whatever the match
type Sink func(matchID string, msg models.MessageRecord)

type subscriber struct {
	ch chan models.MessageRecord
}

// Hub is an in-process pub/sub keyed by match id. Delivery is best effort: a
// subscriber whose buffer is full misses the message and must refetch.
type Hub struct {
	log *zap.Logger

	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	sinks  []Sink
	closed bool
}

// NewHub creates an empty hub
func NewHub(log *zap.Logger) *Hub {
	return &Hub{log: log, subs: make(map[string]map[*subscriber]struct{})}
}

// AddSink registers fn to receive every message
func (h *Hub) AddSink(fn Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, fn)
}

// Subscribe returns a channel of new messages for matchID. cancel closes the
// channel and may be called more than once.
func (h *Hub) Subscribe(matchID string) (<-chan models.MessageRecord, func()) {
	sub := &subscriber{ch: make(chan models.MessageRecord, SubscriberBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	if h.subs[matchID] == nil {
		h.subs[matchID] = make(map[*subscriber]struct{})
	}
	h.subs[matchID][sub] = struct{}{}
	h.mu.Unlock()
	metrics.SubscriberAdded()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { h.remove(matchID, sub) })
	}
}

func (h *Hub) remove(matchID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[matchID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, matchID)
	}
	close(sub.ch)
	metrics.SubscriberRemoved()
}

// Publish delivers msg to every subscriber of matchID and every sink
func (h *Hub) Publish(matchID string, msg models.MessageRecord) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	for sub := range h.subs[matchID] {
		select {
		case sub.ch <- msg:
		default:
			h.log.Warn("⚠️ subscriber lagging, dropped message",
				zap.String("matchId", matchID), zap.String("messageId", msg.ID))
		}
	}
	sinks := append([]Sink(nil), h.sinks...)
	h.mu.RUnlock()

	for _, fn := range sinks {
		fn(matchID, msg)
	}
}

// Subscribers counts the live subscriptions on matchID
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}

// Close ends every subscription. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for matchID, set := range h.subs {
		for sub := range set {
			close(sub.ch)
			metrics.SubscriberRemoved()
		}
		delete(h.subs, matchID)
	}
}
