package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paldeck_server/models"
	"paldeck_server/realtime"
	"paldeck_server/services"
	"paldeck_server/store"
)

type apiHarness struct {
	t      *testing.T
	router *mux.Router
	hub    *realtime.Hub
}

func newHarness(t *testing.T) *apiHarness {
	t.Helper()
	log := zap.NewNop()
	st := store.NewMemoryStore()
	hub := realtime.NewHub(log)
	matches := services.NewMatchService(st, log)

	r := mux.NewRouter()
	RegisterRoutes(r, Dependencies{
		Auth:     services.NewAuthService(st, "secret", time.Hour, log),
		Profiles: services.NewProfileService(st, st, 18, log),
		Swipes:   services.NewSwipeService(st, matches, nil, log),
		Matches:  matches,
		Chat:     services.NewChatService(st, matches, hub, log),
		Log:      log,
	})
	return &apiHarness{t: t, router: r, hub: hub}
}

func (h *apiHarness) do(method, path, token string, body interface{}, out interface{}) int {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

// signUp creates an account with a complete profile and returns its session
func (h *apiHarness) signUp(email, name string) models.AuthResponse {
	h.t.Helper()
	var session models.AuthResponse
	code := h.do(http.MethodPost, "/api/auth/signup", "", models.SignUpRequest{
		Email: email, Password: "password1", PasswordConfirm: "password1",
	}, &session)
	require.Equal(h.t, http.StatusCreated, code)

	code = h.do(http.MethodPost, "/api/profiles", session.Token, models.UserProfile{
		Name:      name,
		Age:       27,
		Location:  "Berlin, Germany",
		Bio:       "New in town.",
		Interests: []string{"climbing", "coffee", "films"},
	}, nil)
	require.Equal(h.t, http.StatusCreated, code)
	return session
}

func TestHealthAndWelcome(t *testing.T) {
	h := newHarness(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/", "", nil, nil))
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	var errBody models.ErrorResponse
	code := h.do(http.MethodPost, "/api/auth/signup", "", models.SignUpRequest{
		Email: "a@example.com", Password: "password1", PasswordConfirm: "password2",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "passwordConfirm", errBody.Field)

	session := h.signUp("a@example.com", "Ana")

	code = h.do(http.MethodPost, "/api/auth/signup", "", models.SignUpRequest{
		Email: "a@example.com", Password: "password1", PasswordConfirm: "password1",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var me models.User
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/auth/me", session.Token, nil, &me))
	assert.Equal(t, session.User.ID, me.ID)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/auth/signin", "", models.SignInRequest{
		Email: "a@example.com", Password: "wrong-password",
	}, nil))

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/api/auth/signout", session.Token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", session.Token, nil, nil))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/deck", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/matches", "bogus", nil, nil))
}

func TestProfileRoutes(t *testing.T) {
	h := newHarness(t)
	session := h.signUp("a@example.com", "Ana")

	var p models.UserProfile
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/profiles/me", session.Token, nil, &p))
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, session.User.ID, p.ID)

	p.Bio = "Still new in town."
	require.Equal(t, http.StatusOK, h.do(http.MethodPut, "/api/profiles/me", session.Token, p, &p))
	assert.Equal(t, "Still new in town.", p.Bio)

	p.Interests = []string{"coffee"}
	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, "/api/profiles/me", session.Token, p, &errBody))
	assert.Equal(t, "interests", errBody.Field)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/profiles/nobody", session.Token, nil, nil))
	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/profiles", session.Token, p, nil))
}

func TestSwipeMatchAndChatFlow(t *testing.T) {
	h := newHarness(t)
	ana := h.signUp("ana@example.com", "Ana")
	ben := h.signUp("ben@example.com", "Ben")

	var deck services.CandidatePage
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/deck?limit=10", ana.Token, nil, &deck))
	require.Len(t, deck.Cards, 1)
	assert.Equal(t, ben.User.ID, deck.Cards[0].ID)

	var swipe models.SwipeResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/swipes", ana.Token,
		models.SwipeRequest{SwipedID: ben.User.ID, Direction: "right"}, &swipe))
	assert.Nil(t, swipe.Match)

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/swipes", ben.Token,
		models.SwipeRequest{SwipedID: ana.User.ID, Direction: "right"}, &swipe))
	require.NotNil(t, swipe.Match)
	matchID := swipe.Match.ID

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/swipes", ana.Token,
		models.SwipeRequest{SwipedID: ben.User.ID, Direction: "left"}, nil))

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/deck", ana.Token, nil, &deck))
	assert.Empty(t, deck.Cards)

	events, cancel := h.hub.Subscribe(matchID)
	defer cancel()

	var msg models.MessageRecord
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/chat/"+matchID+"/messages", ana.Token,
		models.SendMessageRequest{Text: "hi"}, &msg))
	assert.Equal(t, ana.User.ID, msg.Sender)

	select {
	case got := <-events:
		assert.Equal(t, msg.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("message was not published")
	}

	var matches []models.Match
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/matches", ben.Token, nil, &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "Ana", matches[0].User.Name)
	assert.Equal(t, 1, matches[0].Unread)

	var read map[string]int
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/chat/"+matchID+"/read", ben.Token, nil, &read))
	assert.Equal(t, 1, read["updated"])

	var msgs []models.MessageRecord
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/chat/"+matchID+"/messages", ben.Token, nil, &msgs))
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)

	outsider := h.signUp("cy@example.com", "Cy")
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/chat/"+matchID+"/messages", outsider.Token, nil, nil))
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/matches/"+matchID, outsider.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/matches/unknown", outsider.Token, nil, nil))
}

func TestDeckRequiresProfileAndValidFilters(t *testing.T) {
	h := newHarness(t)

	var session models.AuthResponse
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/auth/signup", "", models.SignUpRequest{
		Email: "x@example.com", Password: "password1", PasswordConfirm: "password1",
	}, &session))

	assert.Equal(t, http.StatusPreconditionFailed, h.do(http.MethodGet, "/api/deck", session.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/deck?minAge=abc", session.Token, nil, nil))
	for _, d := range []string{"NaN", "Inf", "-Inf", "%2BInf", "-5"} {
		assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/deck?maxDistance="+d, session.Token, nil, nil), "maxDistance=%s", d)
	}
}
