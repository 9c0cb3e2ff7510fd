package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "database.url")
}

func TestLoadAppliesDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("GESTUREQUIZ_DATABASE_URL", "postgres://localhost:5432/quiz")
	t.Setenv("GESTUREQUIZ_SERVER_PORT", "9090")
	t.Setenv("GESTUREQUIZ_SECURITY_ALLOWED_ORIGINS", "https://quiz.example.com, https://staging.quiz.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "postgres://localhost:5432/quiz", cfg.Database.URL)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, time.Minute, cfg.Security.RateLimitWindow)
	require.Equal(t, 10, cfg.Security.RateLimitMax)
	require.Equal(t,
		[]string{"https://quiz.example.com", "https://staging.quiz.example.com"},
		cfg.Security.AllowedOrigins)
}

func TestLoadGeneratesSecretWhenUnset(t *testing.T) {
	t.Setenv("GESTUREQUIZ_DATABASE_URL", "postgres://localhost:5432/quiz")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Security.GeneratedSecret)
	require.Len(t, cfg.Security.APISecret, 64)
}

func TestLoadKeepsConfiguredSecret(t *testing.T) {
	t.Setenv("GESTUREQUIZ_DATABASE_URL", "postgres://localhost:5432/quiz")
	t.Setenv("GESTUREQUIZ_SECURITY_API_SECRET", "configured-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.Security.GeneratedSecret)
	require.Equal(t, "configured-secret", cfg.Security.APISecret)
}
