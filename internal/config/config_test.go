package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears a variable for the duration of the test; t.Setenv alone
// cannot unset, only overwrite.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TICKETMASTER_API_KEY", "test-key")
	unsetEnv(t, "PORT")
	unsetEnv(t, "APP_ENV")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("TICKETMASTER_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TICKETMASTER_API_KEY")
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("TICKETMASTER_API_KEY", "test-key")
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsProduction())
}

func TestListenAddr(t *testing.T) {
	dev := Config{Port: 3001, Environment: "development"}
	assert.Equal(t, "localhost:3001", dev.ListenAddr())

	prod := Config{Port: 3001, Environment: "production"}
	assert.Equal(t, "0.0.0.0:3001", prod.ListenAddr())
}
