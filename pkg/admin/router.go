package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/courtflow/alertkit/pkg/alerts"
	"github.com/courtflow/alertkit/pkg/logger"
)

// Handler exposes the dispatcher's operational surface over HTTP. It is an
// internal tool: authentication is expected to be layered on by the caller's
// middleware stack.
type Handler struct {
	dispatcher *alerts.Dispatcher
	log        *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates the admin handler over the dispatcher.
func NewHandler(d *alerts.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		dispatcher: d,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router mounts the admin endpoints on a fresh chi router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/alerts", h.listAlerts)
	r.Route("/alerts/{alertID}", func(r chi.Router) {
		r.Get("/", h.getAlert)
		r.Get("/history", h.getHistory)
		r.Post("/retry", h.retryAlert)
		r.Post("/cancel", h.cancelAlert)
	})
	r.Post("/history/clean", h.cleanHistory)
	r.Get("/stats", h.getStats)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.log.Error("failed to encode admin response", logger.Error(err))
		}
	}
}

// respondError maps orchestration sentinels to HTTP statuses: unknown alert
// ids are 404, lifecycle conflicts are 409, everything else is 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, alerts.ErrAlertNotFound):
		status = http.StatusNotFound
	case errors.Is(err, alerts.ErrAlreadySent), errors.Is(err, alerts.ErrInvalidState):
		status = http.StatusConflict
	}
	h.respond(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := h.dispatcher.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]any{"alerts": list, "count": len(list)})
}

func (h *Handler) getAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.dispatcher.Get(r.Context(), chi.URLParam(r, "alertID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, alert)
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")
	history, err := h.dispatcher.History(r.Context(), alertID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]any{"alert_id": alertID, "history": history})
}

func (h *Handler) retryAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")
	results, err := h.dispatcher.Retry(r.Context(), alertID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]any{"alert_id": alertID, "results": results})
}

func (h *Handler) cancelAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")
	cancelled, err := h.dispatcher.Cancel(r.Context(), alertID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if !cancelled {
		h.respond(w, http.StatusNotFound, errorResponse{Error: alerts.ErrAlertNotFound.Error()})
		return
	}
	h.respond(w, http.StatusOK, map[string]any{"alert_id": alertID, "cancelled": true})
}

func (h *Handler) cleanHistory(w http.ResponseWriter, r *http.Request) {
	beforeParam := r.URL.Query().Get("before")
	if beforeParam == "" {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: "missing required query parameter: before"})
		return
	}
	before, err := time.Parse(time.RFC3339, beforeParam)
	if err != nil {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: "before must be an RFC 3339 timestamp"})
		return
	}

	removed, err := h.dispatcher.CleanHistory(r.Context(), before)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]any{"removed": removed})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dispatcher.Stats(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, stats)
}
