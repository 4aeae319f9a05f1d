// Package client is the Go SDK for the Paldeck API: typed HTTP calls, the signed-in
// session, the swipe deck, local profile persistence, realtime chat and in-app
// notifications.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"paldeck_server/models"
)

// HTTPTimeout bounds every SDK request
const HTTPTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Code    string
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d %s: %s: %s", e.Status, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// DeckPage is one page of candidate cards
type DeckPage struct {
	Cards []models.SwipeCard `json:"cards"`
	Next  string             `json:"next,omitempty"`
}

// API calls the Paldeck HTTP endpoints
type API struct {
	BaseURL string
	HTTP    *http.Client

	mu    sync.RWMutex
	token string
}

// NewAPI creates a client for the server at baseURL
func NewAPI(baseURL string) *API {
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: HTTPTimeout},
	}
}

// SetToken sets the bearer token sent with every request
func (a *API) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

// Token returns the current bearer token
func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := a.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: e.Error, Message: e.Message, Field: e.Field}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SignUp creates an account
func (a *API) SignUp(ctx context.Context, email, password, confirm string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := a.do(ctx, http.MethodPost, "/api/auth/signup", models.SignUpRequest{
		Email: email, Password: password, PasswordConfirm: confirm,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn exchanges credentials for a session
func (a *API) SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := a.do(ctx, http.MethodPost, "/api/auth/signin", models.SignInRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut revokes the current token on the server
func (a *API) SignOut(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
}

// Me returns the identity behind the current token
func (a *API) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := a.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProfile stores the signed-in user's first profile
func (a *API) CreateProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := a.do(ctx, http.MethodPost, "/api/profiles", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the signed-in user's profile
func (a *API) UpdateProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := a.do(ctx, http.MethodPut, "/api/profiles/me", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyProfile fetches the signed-in user's profile
func (a *API) MyProfile(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := a.do(ctx, http.MethodGet, "/api/profiles/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile fetches any profile by id
func (a *API) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := a.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deck fetches a page of candidates
func (a *API) Deck(ctx context.Context, f models.DiscoveryFilters, cursor string, limit int) (*DeckPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if f.MinAge > 0 {
		q.Set("minAge", strconv.Itoa(f.MinAge))
	}
	if f.MaxAge > 0 {
		q.Set("maxAge", strconv.Itoa(f.MaxAge))
	}
	if f.MaxDistance > 0 {
		q.Set("maxDistance", strconv.FormatFloat(f.MaxDistance, 'f', -1, 64))
	}
	if len(f.Interests) > 0 {
		q.Set("interests", strings.Join(f.Interests, ","))
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}

	path := "/api/deck"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var out DeckPage
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Swipe records a decision on a profile
func (a *API) Swipe(ctx context.Context, swipedID, direction string) (*models.SwipeResponse, error) {
	var out models.SwipeResponse
	if err := a.do(ctx, http.MethodPost, "/api/swipes", models.SwipeRequest{SwipedID: swipedID, Direction: direction}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Matches lists the signed-in user's matches
func (a *API) Matches(ctx context.Context) ([]models.Match, error) {
	var out []models.Match
	if err := a.do(ctx, http.MethodGet, "/api/matches", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Match fetches one match
func (a *API) Match(ctx context.Context, matchID string) (*models.Match, error) {
	var out models.Match
	if err := a.do(ctx, http.MethodGet, "/api/matches/"+url.PathEscape(matchID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage posts a chat message
func (a *API) SendMessage(ctx context.Context, matchID, text string) (*models.MessageRecord, error) {
	var out models.MessageRecord
	if err := a.do(ctx, http.MethodPost, "/api/chat/"+url.PathEscape(matchID)+"/messages", models.SendMessageRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Messages fetches a match's messages oldest first
func (a *API) Messages(ctx context.Context, matchID string) ([]models.MessageRecord, error) {
	var out []models.MessageRecord
	if err := a.do(ctx, http.MethodGet, "/api/chat/"+url.PathEscape(matchID)+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks every message received in the match as read
func (a *API) MarkRead(ctx context.Context, matchID string) (int, error) {
	var out struct {
		Updated int `json:"updated"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/chat/"+url.PathEscape(matchID)+"/read", nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// PhotoUploadURL asks for a presigned upload URL and returns it with the object key
func (a *API) PhotoUploadURL(ctx context.Context, fileName, fileType string) (string, string, error) {
	var out struct {
		URL      string `json:"url"`
		FileName string `json:"fileName"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/photos/upload-url", models.PhotoUploadRequest{FileName: fileName, FileType: fileType}, &out); err != nil {
		return "", "", err
	}
	return out.URL, out.FileName, nil
}

// PhotoReadURL asks for a presigned read URL
func (a *API) PhotoReadURL(ctx context.Context, key string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/photos/read-url", models.PhotoReadRequest{Key: key}, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// StreamURL is the WebSocket address of a match's message stream
func (a *API) StreamURL(matchID string) string {
	base := a.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/matches/" + url.PathEscape(matchID) + "?token=" + url.QueryEscape(a.Token())
}
