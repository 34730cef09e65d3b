package server

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"github.com/umputun/viteadmin/pkg/domain"
	"github.com/umputun/viteadmin/pkg/metrics"
)

const (
	templatePage = "page.html"

	// element the bundle mounts into and the global it reads boot data from
	adminMountID = "vite-svelte-admin-app"
	adminDataVar = "viteSvelteAdminData"
)

// adminData is passed to the client bundle before it runs
type adminData struct {
	SavedText string `json:"savedText"`
	Nonce     string `json:"nonce"`
	AjaxURL   string `json:"ajaxUrl"`
}

type menuEntry struct {
	Title   string
	URL     string
	Current bool
}

// pageData holds data for rendering admin pages. Bundle fields are set only for the settings page.
type pageData struct {
	Title string
	Login string
	Menu  []menuEntry

	MountID   string
	Enqueue   bool
	DataVar   template.JS
	ScriptURL string
	AdminData adminData
}

// dashboardHandler renders admin landing page, it has the menu but no bundle
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	s.renderPage(w, pageData{
		Title: "Dashboard",
		Login: caller.Login,
		Menu:  s.menu(caller, false),
	})
}

// adminPageHandler renders the settings page with the bundle and its boot data
func (s *Server) adminPageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("page") != s.admin.MenuSlug {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}

	caller := callerFrom(r.Context())
	if !caller.Can(domain.Capability(s.admin.Capability)) {
		http.Error(w, "Sorry, you are not allowed to access this page.", http.StatusForbidden)
		return
	}

	data, err := s.adminData(r, caller)
	if err != nil {
		log.Printf("[ERROR] failed to prepare admin page for %s: %v", caller.Login, err)
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	s.renderPage(w, pageData{
		Title:     s.admin.PageTitle,
		Login:     caller.Login,
		Menu:      s.menu(caller, true),
		MountID:   adminMountID,
		Enqueue:   true,
		DataVar:   adminDataVar,
		ScriptURL: s.admin.ScriptURL,
		AdminData: data,
	})
	metrics.AdminPageViews.Inc()
}

// adminData reads the current value and mints a nonce for the caller
func (s *Server) adminData(r *http.Request, caller domain.Caller) (adminData, error) {
	view, err := s.settings.View(r.Context(), caller)
	if err != nil {
		return adminData{}, err
	}
	return adminData{SavedText: view.Value, Nonce: view.Token, AjaxURL: s.ajaxURL()}, nil
}

// menu returns admin menu entries visible to the caller
func (s *Server) menu(caller domain.Caller, current bool) []menuEntry {
	if !caller.Can(domain.Capability(s.admin.Capability)) {
		return nil
	}
	return []menuEntry{{Title: s.admin.MenuTitle, URL: s.pageURL(), Current: current}}
}

// renderPage executes page template into a buffer first, so a failed render doesn't send partial html
func (s *Server) renderPage(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templatePage, data); err != nil {
		log.Printf("[ERROR] failed to render %s: %v", templatePage, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store") // page carries a nonce
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write page: %v", err)
	}
}
