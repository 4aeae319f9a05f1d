package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 18, cfg.MinAge)
	assert.Equal(t, "Matches", cfg.MatchesTable)
	assert.NotEmpty(t, cfg.JWTSecret, "development falls back to a dev secret")
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := &Config{StoreBackend: "postgres", MinAge: 18}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	cfg := &Config{StoreBackend: "dynamo", AppEnv: "production", MinAge: 18}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MinAgeFloor(t *testing.T) {
	cfg := &Config{StoreBackend: "memory", MinAge: 12, JWTSecret: "x"}
	assert.Error(t, cfg.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: "https://a.app, https://b.app,,"}
	assert.Equal(t, []string{"https://a.app", "https://b.app"}, cfg.AllowedOrigins())
}
