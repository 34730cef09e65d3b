package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"

	"github.com/umputun/viteadmin/pkg/domain"
)

const maxMultipartMemory = 1 << 20

// ajaxAction handles one named action posted to the ajax endpoint
type ajaxAction func(w http.ResponseWriter, r *http.Request, req ajaxRequest)

// ajaxRequest is a parsed ajax call. Fields keeps only submitted keys, so absent and empty are distinct.
type ajaxRequest struct {
	Action string
	Nonce  string
	Fields map[string]string
}

// field returns submitted value and whether it was present at all
func (q ajaxRequest) field(name string) (string, bool) {
	v, ok := q.Fields[name]
	return v, ok
}

// ajaxResponse is the reply body for every ajax action
type ajaxResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ajaxHandler parses the request and dispatches it by the "action" field
func (s *Server) ajaxHandler(w http.ResponseWriter, r *http.Request) {
	req, err := parseAjaxRequest(r)
	if err != nil {
		log.Printf("[WARN] can't parse ajax request from %s: %v", r.RemoteAddr, err)
		renderJSON(w, r, http.StatusBadRequest, ajaxResponse{Message: "Invalid request."})
		return
	}

	action, ok := s.ajaxActions[req.Action]
	if !ok {
		renderJSON(w, r, http.StatusBadRequest, ajaxResponse{Message: "Unknown action."})
		return
	}
	action(w, r, req)
}

// saveDisplayTextAction saves the display text submitted by the admin bundle
func (s *Server) saveDisplayTextAction(w http.ResponseWriter, r *http.Request, req ajaxRequest) {
	caller := callerFrom(r.Context())
	saveReq := domain.SaveRequest{Nonce: req.Nonce}
	if v, ok := req.field("displayText"); ok {
		saveReq.DisplayText = &v
	}

	ack, err := s.settings.Save(r.Context(), caller, saveReq)
	if err != nil {
		code, msg := saveErrorResponse(err)
		if code == http.StatusInternalServerError {
			log.Printf("[ERROR] failed to save display text for %q: %v", caller.Login, err)
		} else {
			log.Printf("[WARN] rejected display text save for %q: %v", caller.Login, err)
		}
		renderJSON(w, r, code, ajaxResponse{Message: msg})
		return
	}

	log.Printf("[INFO] display text %s by %q", ack.Status, caller.Login)
	renderJSON(w, r, http.StatusOK, ajaxResponse{Success: true, Message: ack.Message})
}

// saveErrorResponse maps service errors to status code and client message, the cause is never sent
func saveErrorResponse(err error) (code int, msg string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "Nonce verification failed."
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Insufficient permissions."
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, "Missing display text."
	default:
		return http.StatusInternalServerError, "Failed to save display text."
	}
}

// parseAjaxRequest reads urlencoded, multipart or json body. Action falls back to the query string.
func parseAjaxRequest(r *http.Request) (ajaxRequest, error) {
	req := ajaxRequest{Fields: map[string]string{}}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		// null values are treated as absent, non-string values are rejected
		var body map[string]*string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ajaxRequest{}, fmt.Errorf("decode json body: %w", err)
		}
		for k, v := range body {
			if v != nil {
				req.Fields[k] = *v
			}
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return ajaxRequest{}, fmt.Errorf("parse multipart form: %w", err)
		}
		fillFields(req.Fields, r)
	default:
		if err := r.ParseForm(); err != nil {
			return ajaxRequest{}, fmt.Errorf("parse form: %w", err)
		}
		fillFields(req.Fields, r)
	}

	req.Action = req.Fields["action"]
	if req.Action == "" {
		req.Action = r.URL.Query().Get("action")
	}
	req.Nonce = req.Fields["nonce"]
	return req, nil
}

func fillFields(fields map[string]string, r *http.Request) {
	for k, v := range r.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
}
