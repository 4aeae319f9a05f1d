package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"paldeck_server/models"
)

// ErrSessionClosed is returned by a Session after Close
var ErrSessionClosed = errors.New("session closed")

// Session holds the signed-in identity and tells listeners when it changes.
// Create one per app with NewSession; there is no global instance.
type Session struct {
	api   *API
	cache *ProfileCache

	mu        sync.Mutex
	user      *models.User
	expiresAt time.Time
	listeners map[int]func(*models.User)
	nextID    int
	closed    bool
}

// NewSession creates a signed-out session. cache may be nil.
func NewSession(api *API, cache *ProfileCache) *Session {
	return &Session{api: api, cache: cache, listeners: make(map[int]func(*models.User))}
}

// User returns the signed-in user, or nil
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user is signed in with an unexpired token
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && time.Now().Before(s.expiresAt)
}

// OnChange registers fn to be called with the new user (nil on sign-out).
// The returned function unregisters it.
func (s *Session) OnChange(fn func(*models.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SignUp creates an account and signs in
func (s *Session) SignUp(ctx context.Context, email, password, confirm string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	auth, err := s.api.SignUp(ctx, email, password, confirm)
	if err != nil {
		return err
	}
	return s.set(auth.Token, auth.ExpiresAt, &auth.User)
}

// SignIn signs in with email and password
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	auth, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return s.set(auth.Token, auth.ExpiresAt, &auth.User)
}

// SignOut revokes the token on the server and clears local state. Local state is
// cleared even when the server call fails; that error is still returned.
func (s *Session) SignOut(ctx context.Context) error {
	var remoteErr error
	if s.api.Token() != "" {
		remoteErr = s.api.SignOut(ctx)
	}

	if err := s.set("", 0, nil); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.ClearProfile(); err != nil {
			return err
		}
	}
	return remoteErr
}

// Restore signs back in with the token saved by a previous run. It reports whether a
// user is signed in afterwards; a rejected or expired token is discarded.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	saved, err := s.cache.loadToken()
	if err != nil || saved == nil {
		return false, err
	}
	if time.Now().After(time.Unix(saved.ExpiresAt, 0)) {
		return false, s.set("", 0, nil)
	}

	s.api.SetToken(saved.Token)
	user, err := s.api.Me(ctx)
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return false, s.set("", 0, nil)
		}
		s.api.SetToken("")
		return false, err
	}
	return true, s.set(saved.Token, saved.ExpiresAt, user)
}

// Close drops every listener. The session cannot sign in again afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = make(map[int]func(*models.User))
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) set(token string, expiresAt int64, user *models.User) error {
	s.api.SetToken(token)

	s.mu.Lock()
	s.user = user
	s.expiresAt = time.Unix(expiresAt, 0)
	listeners := make([]func(*models.User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	var err error
	if s.cache != nil {
		if user != nil {
			err = s.cache.saveToken(cachedToken{Token: token, ExpiresAt: expiresAt, User: *user})
		} else {
			err = s.cache.clearToken()
		}
	}

	for _, fn := range listeners {
		var u *models.User
		if user != nil {
			c := *user
			u = &c
		}
		fn(u)
	}
	return err
}
