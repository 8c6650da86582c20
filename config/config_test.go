package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOUQUET_AUTH_JWT_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "log", cfg.Push.Provider)
	assert.Equal(t, "v1", cfg.Push.APIVersion)
	assert.Equal(t, []string{"admin", "staff"}, cfg.Notify.StaffRoles)
	assert.Equal(t, 3, cfg.Notify.MaxItems)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
push:
  provider: fcm
  api_version: legacy
notify:
  fallback_recipients: ["owner-1", "owner-2"]
  max_items: 5
auth:
  jwt_secret: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("BOUQUET_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "fcm", cfg.Push.Provider)
	assert.Equal(t, "legacy", cfg.Push.APIVersion)
	assert.Equal(t, []string{"owner-1", "owner-2"}, cfg.Notify.FallbackRecipients)
	assert.Equal(t, 5, cfg.Notify.MaxItems)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("unknown push provider", func(t *testing.T) {
		t.Setenv("BOUQUET_AUTH_JWT_SECRET", "secret")
		t.Setenv("BOUQUET_PUSH_PROVIDER", "apns")
		_, err := Load("")
		assert.Error(t, err)
	})
}
