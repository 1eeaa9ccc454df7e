package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 64, cfg.SubscriberBuffer)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("SUBSCRIBER_BUFFER", "8")
	t.Setenv("AUTH_DISABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, 8, cfg.SubscriberBuffer)
	assert.True(t, cfg.AuthDisabled)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=from-file.db\nJWT_ISSUER=file-issuer\n"), 0o600))
	t.Setenv("JWT_ISSUER", "env-issuer")
	t.Cleanup(func() { os.Unsetenv("DB_PATH") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file.db", cfg.DBPath)
	assert.Equal(t, "env-issuer", cfg.JWTIssuer)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	_, err := Load("")
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DB_DRIVER", "mongo")
	_, err = Load("")
	assert.ErrorContains(t, err, "unsupported")
}
