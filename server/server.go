package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/viteadmin/pkg/config"
	"github.com/umputun/viteadmin/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/settings.go -pkg mocks -skip-ensure -fmt goimports . SettingsService

//go:embed templates
var templatesFS embed.FS

const (
	adminPrefix = "/wp-admin"
	ajaxPath    = "/admin-ajax.php"
	pagePath    = "/admin.php"

	// ajax action saving the display text, the bundle posts it as "action" field
	saveDisplayTextAction = "vite_svelte_save_display_text"
)

// Server represents HTTP server instance
type Server struct {
	config   ConfigProvider
	settings SettingsService
	auth     *authenticator
	version  string
	debug    bool

	admin       config.AdminConfig
	templates   *template.Template
	ajaxActions map[string]ajaxAction

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// SettingsService reads and saves the display text setting
type SettingsService interface {
	View(ctx context.Context, caller domain.Caller) (domain.SettingView, error)
	Save(ctx context.Context, caller domain.Caller, req domain.SaveRequest) (domain.Ack, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetBaseURL() string
	GetAdminConfig() config.AdminConfig
	GetUsers() []config.UserConfig
}

// New initializes a new server instance
func New(cfg ConfigProvider, settings SettingsService, version string, debug bool) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		config:    cfg,
		settings:  settings,
		auth:      newAuthenticator(cfg.GetUsers()),
		version:   version,
		debug:     debug,
		admin:     cfg.GetAdminConfig(),
		templates: tmpl,
		router:    routegroup.New(http.NewServeMux()),
	}
	s.ajaxActions = map[string]ajaxAction{
		saveDisplayTextAction: s.saveDisplayTextAction,
	}

	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	return s, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("viteadmin", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.RealIP)
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
	s.router.Use(s.auth.middleware)
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() error {
	s.router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, adminPrefix+"/", http.StatusFound)
	})

	// admin pages and the ajax endpoint
	s.router.Mount(adminPrefix).Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /{$}", s.requireLogin(s.dashboardHandler))
		r.HandleFunc("GET "+pagePath, s.requireLogin(s.adminPageHandler))
		r.HandleFunc("POST "+ajaxPath, s.ajaxHandler)
	})

	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /admin-data", s.requireLogin(s.adminDataHandler))
	})

	// built client bundle
	if s.admin.AssetsDir != "" {
		if _, err := os.Stat(s.admin.AssetsDir); err != nil {
			return fmt.Errorf("assets dir: %w", err)
		}
		assetsPath := strings.TrimSuffix(s.admin.AssetsPath, "/")
		fs, err := rest.NewFileServer(assetsPath, s.admin.AssetsDir)
		if err != nil {
			return fmt.Errorf("assets file server for %s: %w", s.admin.AssetsDir, err)
		}
		s.router.Handle("GET "+assetsPath+"/", fs)
	}
	return nil
}

// ajaxURL returns URL of the ajax endpoint, absolute if base url is configured
func (s *Server) ajaxURL() string {
	return s.config.GetBaseURL() + adminPrefix + ajaxPath
}

// pageURL returns URL of the admin page
func (s *Server) pageURL() string {
	return adminPrefix + pagePath + "?page=" + s.admin.MenuSlug
}
