package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("STORAGE_TIMEOUT", "")
	cfg := Load()

	assert.Equal(t, BackendDynamo, cfg.StoreBackend)
	assert.Equal(t, 5*time.Second, cfg.StorageTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "posts", cfg.DynamoTables.Posts)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMongo)
	t.Setenv("STORAGE_TIMEOUT", "750ms")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cfg := Load()

	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, 750*time.Millisecond, cfg.StorageTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("STORAGE_TIMEOUT", "soon")
	assert.Equal(t, 5*time.Second, Load().StorageTimeout)
}
