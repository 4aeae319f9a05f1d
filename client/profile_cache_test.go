package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paldeck_server/models"
)

func TestProfileCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	cache := NewProfileCache(path)

	p, err := cache.LoadProfile()
	require.NoError(t, err)
	assert.Nil(t, p)

	want := models.UserProfile{ID: "1", Name: "Alex Chen", Age: 28, Interests: []string{"hiking", "chess", "jazz"}}
	require.NoError(t, cache.SaveProfile(want))

	// a fresh cache on the same file sees it, as on the next launch
	got, err := NewProfileCache(path).LoadProfile()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Interests, got.Interests)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Contains(t, entries, ProfileKey)

	require.NoError(t, cache.ClearProfile())
	got, err = cache.LoadProfile()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileCacheKeepsKeysSeparate(t *testing.T) {
	cache := NewProfileCache(filepath.Join(t.TempDir(), "cache.json"))

	require.NoError(t, cache.saveToken(cachedToken{Token: "tok", ExpiresAt: 42}))
	require.NoError(t, cache.SaveProfile(models.UserProfile{ID: "1"}))
	require.NoError(t, cache.ClearProfile())

	tok, err := cache.loadToken()
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "tok", tok.Token)
}

func TestProfileCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	cache := NewProfileCache(path)

	_, err := cache.LoadProfile()
	assert.Error(t, err)

	require.NoError(t, cache.SaveProfile(models.UserProfile{ID: "1"}))
	p, err := cache.LoadProfile()
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)
}
