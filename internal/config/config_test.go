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
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Empty(t, cfg.Categories)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.EmailEnabled())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("PORT", "8080")
	t.Setenv("MONGO_URI", "mongodb://old:27017/fb")
	t.Setenv("MONGODB_URI", "mongodb://new:27017/fb")
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("EMAIL_PASS", "app-password")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://new:27017/fb", cfg.MongoURI)
	assert.True(t, cfg.EmailEnabled())
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "bot@example.com", cfg.Operator())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadMongoURIFallback(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://old:27017/fb")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://old:27017/fb", cfg.MongoURI)
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("FEEDBACK_PORT", "9090")
	t.Setenv("FEEDBACK_STORE_DRIVER", "Postgres")
	t.Setenv("FEEDBACK_STORE_TIMEOUT", "2s")
	t.Setenv("FEEDBACK_OPERATOR_EMAIL", "ops@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "ops@example.com", cfg.Operator())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
notify_timezone: Asia/Kolkata
categories:
  - student
  - parent
`), 0o600))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)

	// Environment beats the file
	assert.Equal(t, "7100", cfg.Port)
	assert.Equal(t, []string{"student", "parent"}, cfg.Categories)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestLoadEmptyCategoriesAcceptsAny(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: []\n"), 0o600))
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Categories)
}

func TestLoadCategoriesFromEnv(t *testing.T) {
	t.Setenv("FEEDBACK_CATEGORIES", "student, parent")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"student", "parent"}, cfg.Categories)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.StoreDriver = "sqlite"
	cfg.NotifyTimezone = "Mars/Olympus"
	cfg.Port = " "
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown store driver "sqlite"`)
	assert.ErrorContains(t, err, "invalid notify timezone")
	assert.ErrorContains(t, err, "port must not be empty")

	cfg = Defaults()
	cfg.EmailUser = "bot@example.com"
	cfg.SMTPPort = 0
	assert.ErrorContains(t, cfg.Validate(), "invalid smtp port")
}
