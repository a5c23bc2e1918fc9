package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults when the file does not exist", func(t *testing.T) {
		// when
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 8181, cfg.Server.Port)
		assert.Equal(t, "cashplan", cfg.Database.Schema)
		assert.False(t, cfg.Auth.Enabled)
		assert.Equal(t, 10*time.Minute, cfg.Cache.Ttl)
	})

	t.Run("should override defaults from the yaml file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := "db:\n  host: db.internal\n  port: 6543\nauth:\n  enabled: true\n  jwtsecret: s3cret\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.True(t, cfg.Auth.Enabled)
		assert.Equal(t, "s3cret", cfg.Auth.JwtSecret)
		assert.Equal(t, "cashplan", cfg.Database.User)
	})

	t.Run("should let environment variables win over the file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db:\n  name: fromfile\n"), 0o644))
		t.Setenv("CASHPLAN_DB_NAME", "fromenv")
		t.Setenv("CASHPLAN_NOTIFICATIONS_ENABLED", "true")

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "fromenv", cfg.Database.Name)
		assert.True(t, cfg.Notifications.Enabled)
	})

	t.Run("should reject enabled auth without a jwt secret", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("auth:\n  enabled: true\n  jwtsecret: \"  \"\n"), 0o644))

		// when
		_, fileErr := Load(path)
		t.Setenv("CASHPLAN_AUTH_ENABLED", "true")
		_, envErr := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		assert.ErrorIs(t, fileErr, ErrMissingJwtSecret)
		assert.ErrorIs(t, envErr, ErrMissingJwtSecret)
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db: [unclosed"), 0o644))

		// when
		_, err := Load(path)

		// then
		assert.Error(t, err)
	})
}
