// Package http serves a stand-in persistence API over any Backend. The admin
// console talks to it in local development and in tests.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/listmanager"
	"expo-admin/internal/logger"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Backend is the storage behind the served API.
type Backend interface {
	List(ctx context.Context, resource string) ([]listmanager.Record, error)
	Get(ctx context.Context, resource, id string) (listmanager.Record, error)
	Create(ctx context.Context, resource string, fields listmanager.Record) (listmanager.Record, error)
	Update(ctx context.Context, resource, id string, fields listmanager.Record) (listmanager.Record, error)
	Delete(ctx context.Context, resource, id string) error
	Perform(ctx context.Context, resource, id, action string) error
	Authenticate(ctx context.Context, email, password string) (domain.Session, error)
	VerifySession(ctx context.Context, token string) error
	Results(ctx context.Context, since time.Time) ([]domain.QuizResult, error)
	StreamResults(ctx context.Context, handle func(domain.QuizResult)) error
}

type Handler struct {
	backend  Backend
	log      *logrus.Entry
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

func NewHandler(backend Backend, log *logrus.Entry) *Handler {
	if log == nil {
		log = logger.For("http")
	}
	h := &Handler{
		backend: backend,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	h.mux.HandleFunc("POST /auth/login", h.login)
	h.mux.HandleFunc("GET /auth/me", h.authed(h.me))
	h.mux.HandleFunc("GET /results", h.authed(h.results))
	h.mux.HandleFunc("GET /results/stream", h.authed(h.ServeStream))
	h.mux.HandleFunc("GET /{resource}", h.authed(h.list))
	h.mux.HandleFunc("POST /{resource}", h.authed(h.create))
	h.mux.HandleFunc("GET /{resource}/{id}", h.authed(h.get))
	h.mux.HandleFunc("PUT /{resource}/{id}", h.authed(h.update))
	h.mux.HandleFunc("DELETE /{resource}/{id}", h.authed(h.remove))
	h.mux.HandleFunc("POST /{resource}/{id}/{action}", h.authed(h.perform))
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Mount serves h under prefix, e.g. "/api".
func Mount(prefix string, h http.Handler) http.Handler {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return h
	}
	mux := http.NewServeMux()
	mux.Handle(prefix+"/", http.StripPrefix(prefix, h))
	return mux
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid login payload")
		return
	}
	session, err := h.backend.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		since = t
	}
	results, err := h.backend.Results(r.Context(), since)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.backend.List(r.Context(), r.PathValue("resource"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": records})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.backend.Get(r.Context(), r.PathValue("resource"), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := h.backend.Create(r.Context(), r.PathValue("resource"), fields)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := h.backend.Update(r.Context(), r.PathValue("resource"), r.PathValue("id"), fields)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.Delete(r.Context(), r.PathValue("resource"), r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) perform(w http.ResponseWriter, r *http.Request) {
	err := h.backend.Perform(r.Context(), r.PathValue("resource"), r.PathValue("id"), r.PathValue("action"))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// authed rejects requests without a bearer token the backend accepts.
func (h *Handler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			h.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := h.backend.VerifySession(r.Context(), token); err != nil {
			h.fail(w, err)
			return
		}
		next(w, r)
	}
}

func (h *Handler) decodeFields(w http.ResponseWriter, r *http.Request) (listmanager.Record, bool) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		h.writeError(w, http.StatusBadRequest, "unreadable body")
		return nil, false
	}
	var fields listmanager.Record
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "body must be a JSON object")
		return nil, false
	}
	return fields, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorBody{Error: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Warn("write response")
	}
}
