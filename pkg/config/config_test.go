package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHash is a syntactically valid bcrypt hash
const testHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
server:
  listen: ":9090"
  timeout: 45s
  base_url: "https://example.com/"
  metrics_listen: ":9100"

store:
  type: redis
  redis:
    addr: "redis:6379"
    db: 2

admin:
  page_title: "Settings"
  menu_slug: "my-settings"
  script_url: "/static/app.js"
  assets_dir: "./dist"

nonce:
  secret: "0123456789abcdef0123"
  ttl: 1h

users:
  - login: admin
    password_hash: "` + testHash + `"
    role: administrator
  - login: bob
    password_hash: "` + testHash + `"
    capabilities: [manage_options]
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "https://example.com", cfg.Server.BaseURL, "trailing slash trimmed")
		assert.Equal(t, ":9100", cfg.Server.MetricsListen)

		assert.Equal(t, "redis", cfg.Store.Type)
		assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
		assert.Equal(t, 2, cfg.Store.Redis.DB)
		assert.Equal(t, "viteadmin:", cfg.Store.Redis.Prefix)

		assert.Equal(t, "Settings", cfg.Admin.PageTitle)
		assert.Equal(t, "Vite Svelte", cfg.Admin.MenuTitle)
		assert.Equal(t, "my-settings", cfg.Admin.MenuSlug)
		assert.Equal(t, "/static/app.js", cfg.Admin.ScriptURL)
		assert.Equal(t, "./dist", cfg.Admin.AssetsDir)

		assert.Equal(t, time.Hour, cfg.Nonce.TTL)

		require.Len(t, cfg.Users, 2)
		assert.Equal(t, "administrator", cfg.Users[0].Role)
		assert.Equal(t, testHash, cfg.Users[0].PasswordHash, "bare $ is not expanded")
		assert.Equal(t, "subscriber", cfg.Users[1].Role, "role defaults to subscriber")
		assert.Equal(t, []string{"manage_options"}, cfg.Users[1].Capabilities)
	})

	t.Run("defaults", func(t *testing.T) {
		configContent := `
nonce:
  secret: "0123456789abcdef0123"
users:
  - login: admin
    password_hash: "` + testHash + `"
    role: administrator
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Empty(t, cfg.Server.BaseURL)

		assert.Equal(t, "sqlite", cfg.Store.Type)
		assert.Contains(t, cfg.Store.DSN, "viteadmin.db")
		assert.Equal(t, 10, cfg.Store.MaxOpenConns)
		assert.Equal(t, 5, cfg.Store.MaxIdleConns)
		assert.Equal(t, 3600, cfg.Store.ConnMaxLifetime)

		assert.Equal(t, "Vite Svelte Example", cfg.Admin.PageTitle)
		assert.Equal(t, "vite-svelte-example-admin", cfg.Admin.MenuSlug)
		assert.Equal(t, "manage_options", cfg.Admin.Capability)
		assert.Equal(t, "vite_svelte_display_text", cfg.Admin.OptionName)
		assert.Equal(t, "Default Text", cfg.Admin.DefaultText)
		assert.Equal(t, "/assets/admin.js", cfg.Admin.ScriptURL)
		assert.Equal(t, "/assets", cfg.Admin.AssetsPath)

		assert.Equal(t, 24*time.Hour, cfg.Nonce.TTL)
		assert.Equal(t, 1000, cfg.Nonce.CacheSize)
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("TEST_NONCE_SECRET", "secret-from-environment")
		configContent := `
nonce:
  secret: ${TEST_NONCE_SECRET}
users:
  - login: admin
    password_hash: "` + testHash + `"
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		assert.Equal(t, "secret-from-environment", cfg.Nonce.Secret)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configContent := `
invalid yaml content
  with bad indentation
    and no structure
`
		cfg, err := Load(writeConfig(t, configContent))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Validation(t *testing.T) {
	user := `
users:
  - login: admin
    password_hash: "` + testHash + `"
`
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "no secret", content: user, errMsg: "Secret"},
		{name: "short secret", content: "nonce:\n  secret: short\n" + user, errMsg: "Secret"},
		{name: "no users", content: "nonce:\n  secret: 0123456789abcdef0123\n", errMsg: "Users"},
		{name: "bad store type", content: "store:\n  type: mysql\nnonce:\n  secret: 0123456789abcdef0123\n" + user,
			errMsg: "Type"},
		{name: "bad role", content: `
nonce:
  secret: 0123456789abcdef0123
users:
  - login: admin
    password_hash: "` + testHash + `"
    role: king
`, errMsg: "Role"},
		{name: "bad hash", content: `
nonce:
  secret: 0123456789abcdef0123
users:
  - login: admin
    password_hash: "plain-password"
`, errMsg: "invalid password hash"},
		{name: "duplicate user", content: `
nonce:
  secret: 0123456789abcdef0123
users:
  - login: admin
    password_hash: "` + testHash + `"
  - login: admin
    password_hash: "` + testHash + `"
`, errMsg: "duplicate user"},
		{name: "slug with slash", content: "admin:\n  menu_slug: a/b\nnonce:\n  secret: 0123456789abcdef0123\n" + user,
			errMsg: "MenuSlug"},
		{name: "short timeout", content: "server:\n  timeout: 100ms\nnonce:\n  secret: 0123456789abcdef0123\n" + user,
			errMsg: "server timeout"},
		{name: "short ttl", content: "nonce:\n  secret: 0123456789abcdef0123\n  ttl: 1s\n" + user,
			errMsg: "nonce ttl"},
		{name: "relative assets path", content: "admin:\n  assets_path: assets\nnonce:\n  secret: 0123456789abcdef0123\n" + user,
			errMsg: "assets_path"},
		{name: "bad base url", content: "server:\n  base_url: not a url\nnonce:\n  secret: 0123456789abcdef0123\n" + user,
			errMsg: "BaseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "validate config")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Getters(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Listen: ":9090", Timeout: 45 * time.Second, BaseURL: "https://example.com"},
		Admin:  AdminConfig{MenuSlug: "slug"},
		Users:  []UserConfig{{Login: "admin"}},
	}

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":9090", listen)
	assert.Equal(t, 45*time.Second, timeout)
	assert.Equal(t, "https://example.com", cfg.GetBaseURL())
	assert.Equal(t, "slug", cfg.GetAdminConfig().MenuSlug)
	assert.Equal(t, []UserConfig{{Login: "admin"}}, cfg.GetUsers())
}

func TestLoad_SchemaMismatchWarning(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	origSchema := embeddedSchema
	embeddedSchema = `{"$defs": {}}`
	defer func() { embeddedSchema = origSchema }()

	cfg, err := Load(writeConfig(t, `
nonce:
  secret: "0123456789abcdef0123"
users:
  - login: admin
    password_hash: "`+testHash+`"
`))
	require.NoError(t, err, "schema mismatch is not fatal")
	require.NotNil(t, cfg)
	assert.Contains(t, buf.String(), "[WARN] schema validation failed")
}
