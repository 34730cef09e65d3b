package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/umputun/viteadmin/pkg/domain"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// adminDataHandler returns the same boot data the settings page injects, for bundles fetching it on start
func (s *Server) adminDataHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	if !caller.Can(domain.Capability(s.admin.Capability)) {
		renderError(w, r, errors.New("insufficient permissions"), http.StatusForbidden)
		return
	}

	data, err := s.adminData(r, caller)
	if err != nil {
		log.Printf("[ERROR] failed to get admin data for %s: %v", caller.Login, err)
		renderError(w, r, errors.New("failed to load settings"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	renderJSON(w, r, http.StatusOK, data)
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
