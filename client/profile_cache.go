package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"paldeck_server/models"
)

// Fixed keys of the cache file
const (
	ProfileKey = "user_profile"
	TokenKey   = "auth_token"
)

type cachedToken struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
	User      models.User `json:"user"`
}

// ProfileCache keeps the signed-in user's profile and token in a small JSON file so
// the app can show them at launch before the network answers
type ProfileCache struct {
	path string
	mu   sync.Mutex
}

// NewProfileCache uses the file at path, creating it on first write
func NewProfileCache(path string) *ProfileCache {
	return &ProfileCache{path: path}
}

// SaveProfile stores p under ProfileKey
func (c *ProfileCache) SaveProfile(p models.UserProfile) error {
	return c.put(ProfileKey, p)
}

// LoadProfile returns the cached profile, or nil if none is stored
func (c *ProfileCache) LoadProfile() (*models.UserProfile, error) {
	var p models.UserProfile
	ok, err := c.get(ProfileKey, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// ClearProfile removes the cached profile
func (c *ProfileCache) ClearProfile() error {
	return c.put(ProfileKey, nil)
}

func (c *ProfileCache) saveToken(t cachedToken) error {
	return c.put(TokenKey, t)
}

func (c *ProfileCache) loadToken() (*cachedToken, error) {
	var t cachedToken
	ok, err := c.get(TokenKey, &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

func (c *ProfileCache) clearToken() error {
	return c.put(TokenKey, nil)
}

func (c *ProfileCache) get(key string, out interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read()
	if err != nil {
		return false, err
	}
	raw, ok := entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// put stores v under key; a nil v deletes the key
func (c *ProfileCache) put(key string, v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read()
	if err != nil {
		// a corrupt file is replaced rather than blocking every later write
		entries = map[string]json.RawMessage{}
	}

	if v == nil {
		delete(entries, key)
	} else {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		entries[key] = raw
	}
	return c.write(entries)
}

func (c *ProfileCache) read() (map[string]json.RawMessage, error) {
	entries := map[string]json.RawMessage{}
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse cache: %w", err)
	}
	return entries, nil
}

// write replaces the file atomically
func (c *ProfileCache) write(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".paldeck-cache-*")
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return os.Rename(tmp.Name(), c.path)
}
