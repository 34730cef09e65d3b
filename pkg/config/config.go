package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

var envRe = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// Config holds the application configuration
type Config struct {
	Server ServerConfig `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	Store  StoreConfig  `yaml:"store" json:"store" jsonschema:"description=Setting store configuration"`
	Admin  AdminConfig  `yaml:"admin" json:"admin" jsonschema:"description=Admin page configuration"`
	Nonce  NonceConfig  `yaml:"nonce" json:"nonce" jsonschema:"description=Request token configuration"`
	Users  []UserConfig `yaml:"users" json:"users" validate:"min=1,dive" jsonschema:"description=Users allowed to sign in"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Listen        string        `yaml:"listen" json:"listen" validate:"required" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	BaseURL       string        `yaml:"base_url" json:"base_url" validate:"omitempty,url" jsonschema:"description=Public base URL used to build the ajax URL (relative if empty)"`
	MetricsListen string        `yaml:"metrics_listen" json:"metrics_listen" jsonschema:"description=Separate listen address for prometheus metrics (disabled if empty)"`
}

// StoreConfig holds setting store settings
type StoreConfig struct {
	Type            string      `yaml:"type" json:"type" validate:"oneof=sqlite redis" jsonschema:"default=sqlite,enum=sqlite,enum=redis,description=Store backend"`
	DSN             string      `yaml:"dsn" json:"dsn" jsonschema:"default=file:viteadmin.db?cache=shared&mode=rwc,description=SQLite connection string"`
	MaxOpenConns    int         `yaml:"max_open_conns" json:"max_open_conns" validate:"gte=0" jsonschema:"default=10,description=Maximum number of open connections"`
	MaxIdleConns    int         `yaml:"max_idle_conns" json:"max_idle_conns" validate:"gte=0" jsonschema:"default=5,description=Maximum number of idle connections"`
	ConnMaxLifetime int         `yaml:"conn_max_lifetime" json:"conn_max_lifetime" validate:"gte=0" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	Redis           RedisConfig `yaml:"redis" json:"redis" jsonschema:"description=Redis settings used with the redis store type"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr" jsonschema:"default=localhost:6379,description=Redis address"`
	Password string `yaml:"password" json:"password" jsonschema:"description=Redis password"`
	DB       int    `yaml:"db" json:"db" validate:"gte=0" jsonschema:"default=0,description=Redis database number"`
	Prefix   string `yaml:"prefix" json:"prefix" jsonschema:"default=viteadmin:,description=Key prefix"`
}

// AdminConfig describes the admin page and the setting it manages
type AdminConfig struct {
	PageTitle   string `yaml:"page_title" json:"page_title" jsonschema:"default=Vite Svelte Example,description=Admin page title"`
	MenuTitle   string `yaml:"menu_title" json:"menu_title" jsonschema:"default=Vite Svelte,description=Admin menu entry title"`
	MenuSlug    string `yaml:"menu_slug" json:"menu_slug" validate:"required,excludesall=/?#&" jsonschema:"default=vite-svelte-example-admin,description=Admin page slug"`
	Capability  string `yaml:"capability" json:"capability" validate:"required" jsonschema:"default=manage_options,description=Capability required to open the page and save"`
	OptionName  string `yaml:"option_name" json:"option_name" validate:"required" jsonschema:"default=vite_svelte_display_text,description=Setting key of the display text"`
	DefaultText string `yaml:"default_text" json:"default_text" jsonschema:"default=Default Text,description=Value returned when nothing is stored"`
	ScriptURL   string `yaml:"script_url" json:"script_url" validate:"required" jsonschema:"default=/assets/admin.js,description=URL of the compiled admin bundle"`
	AssetsDir   string `yaml:"assets_dir" json:"assets_dir" jsonschema:"description=Local directory with the built bundle (not served if empty)"`
	AssetsPath  string `yaml:"assets_path" json:"assets_path" jsonschema:"default=/assets,description=URL path the assets directory is served under"`
}

// NonceConfig holds request token settings
type NonceConfig struct {
	Secret    string        `yaml:"secret" json:"secret" validate:"required,min=16" jsonschema:"description=HMAC secret for request tokens (can use environment variable)"`
	TTL       time.Duration `yaml:"ttl" json:"ttl" jsonschema:"default=24h,description=Request token lifetime"`
	CacheSize int           `yaml:"cache_size" json:"cache_size" validate:"gte=0" jsonschema:"default=1000,description=Number of tracked user/action pairs"`
}

// UserConfig defines a user and what the user is allowed to do
type UserConfig struct {
	Login        string   `yaml:"login" json:"login" validate:"required" jsonschema:"required,description=User login"`
	PasswordHash string   `yaml:"password_hash" json:"password_hash" validate:"required" jsonschema:"required,description=Bcrypt hash of the password"`
	Role         string   `yaml:"role" json:"role" validate:"omitempty,oneof=administrator editor subscriber" jsonschema:"default=subscriber,enum=administrator,enum=editor,enum=subscriber,description=User role"`
	Capabilities []string `yaml:"capabilities" json:"capabilities" jsonschema:"description=Extra capabilities on top of the role"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables, only ${VAR} form as bcrypt hashes contain bare $
	expanded := envRe.ReplaceAllStringFunc(string(data), func(m string) string {
		return os.Getenv(m[2 : len(m)-1])
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		log.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	c.Server.BaseURL = strings.TrimSuffix(c.Server.BaseURL, "/")

	// store
	if c.Store.Type == "" {
		c.Store.Type = "sqlite"
	}
	if c.Store.DSN == "" {
		c.Store.DSN = "file:viteadmin.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Store.MaxOpenConns == 0 {
		c.Store.MaxOpenConns = 10
	}
	if c.Store.MaxIdleConns == 0 {
		c.Store.MaxIdleConns = 5
	}
	if c.Store.ConnMaxLifetime == 0 {
		c.Store.ConnMaxLifetime = 3600
	}
	if c.Store.Redis.Addr == "" {
		c.Store.Redis.Addr = "localhost:6379"
	}
	if c.Store.Redis.Prefix == "" {
		c.Store.Redis.Prefix = "viteadmin:"
	}

	// admin page
	if c.Admin.PageTitle == "" {
		c.Admin.PageTitle = "Vite Svelte Example"
	}
	if c.Admin.MenuTitle == "" {
		c.Admin.MenuTitle = "Vite Svelte"
	}
	if c.Admin.MenuSlug == "" {
		c.Admin.MenuSlug = "vite-svelte-example-admin"
	}
	if c.Admin.Capability == "" {
		c.Admin.Capability = "manage_options"
	}
	if c.Admin.OptionName == "" {
		c.Admin.OptionName = "vite_svelte_display_text"
	}
	if c.Admin.DefaultText == "" {
		c.Admin.DefaultText = "Default Text"
	}
	if c.Admin.ScriptURL == "" {
		c.Admin.ScriptURL = "/assets/admin.js"
	}
	if c.Admin.AssetsPath == "" {
		c.Admin.AssetsPath = "/assets"
	}

	// nonce
	if c.Nonce.TTL == 0 {
		c.Nonce.TTL = 24 * time.Hour
	}
	if c.Nonce.CacheSize == 0 {
		c.Nonce.CacheSize = 1000
	}

	// users
	for i := range c.Users {
		if c.Users[i].Role == "" {
			c.Users[i].Role = "subscriber"
		}
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s: failed on %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}

	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Nonce.TTL < time.Minute {
		return fmt.Errorf("nonce ttl must be at least 1 minute")
	}
	if cfg.Store.Type == "redis" && cfg.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for redis store")
	}
	if !strings.HasPrefix(cfg.Admin.AssetsPath, "/") {
		return fmt.Errorf("admin.assets_path must start with /")
	}

	// validate users
	seen := make(map[string]bool, len(cfg.Users))
	for _, u := range cfg.Users {
		if seen[u.Login] {
			return fmt.Errorf("duplicate user %q", u.Login)
		}
		seen[u.Login] = true
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return fmt.Errorf("user %q: invalid password hash: %w", u.Login, err)
		}
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetAdminConfig returns admin page configuration
func (c *Config) GetAdminConfig() AdminConfig {
	return c.Admin
}

// GetUsers returns configured users
func (c *Config) GetUsers() []UserConfig {
	return c.Users
}

// GetBaseURL returns public base URL without trailing slash, empty for relative URLs
func (c *Config) GetBaseURL() string {
	return c.Server.BaseURL
}
