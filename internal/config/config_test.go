package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsOptionalKeys(t *testing.T) {
	t.Setenv("DB_NAME", "touchline.db")
	t.Setenv("PORT", "8080")
	t.Setenv("ANALYTICS_DATABASE_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://stats.example.com, http://localhost:3000")

	cfg := Load()

	assert.Equal(t, "touchline.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.Analytics.DatabaseURL)
	assert.Equal(t, []string{"https://stats.example.com", "http://localhost:3000"}, cfg.CORSOrigins)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitList("*"))
	assert.Nil(t, splitList(" , "))
}
