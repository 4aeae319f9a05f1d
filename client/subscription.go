package client

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"paldeck_server/models"
)

// Subscription receives a match's new messages over a WebSocket. Each message id is
// delivered at most once, including ids already marked seen from an HTTP fetch.
type Subscription struct {
	conn *websocket.Conn
	out  chan models.MessageRecord

	mu   sync.Mutex
	seen map[string]struct{}
	err  error

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Subscribe opens the message stream of matchID with the API's current token
func Subscribe(ctx context.Context, api *API, matchID string) (*Subscription, error) {
	dialer := websocket.Dialer{HandshakeTimeout: HTTPTimeout}
	conn, _, err := dialer.DialContext(ctx, api.StreamURL(matchID), nil)
	if err != nil {
		return nil, err
	}

	s := &Subscription{
		conn: conn,
		out:  make(chan models.MessageRecord, 32),
		seen: make(map[string]struct{}),
		done: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.readLoop()
	return s, nil
}

// Messages is closed when the stream ends
func (s *Subscription) Messages() <-chan models.MessageRecord {
	return s.out
}

// MarkSeen records ids that must not be delivered again
func (s *Subscription) MarkSeen(msgs ...models.MessageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		s.seen[m.ID] = struct{}{}
	}
}

// Err returns why the stream ended, nil after Close
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the stream and waits for the reader to stop. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
	s.wg.Wait()
}

func (s *Subscription) firstDelivery(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[id]; dup {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

func (s *Subscription) readLoop() {
	defer s.wg.Done()
	defer close(s.out)

	for {
		var msg models.MessageRecord
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.done:
			default:
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}
		if !s.firstDelivery(msg.ID) {
			continue
		}
		select {
		case s.out <- msg:
		case <-s.done:
			return
		}
	}
}
