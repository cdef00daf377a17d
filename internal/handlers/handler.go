package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/clanofthecloud/cloudbridge/internal/app"
	"github.com/clanofthecloud/cloudbridge/internal/dispatch"
	"github.com/clanofthecloud/cloudbridge/internal/ws"
)

const defaultCallTimeout = 30 * time.Second

type Handler struct {
	app    *app.Context
	disp   *dispatch.Dispatcher
	hub    *ws.Hub
	logger *slog.Logger

	CallTimeout time.Duration
}

func New(
	ctx *app.Context,
	disp *dispatch.Dispatcher,
	hub *ws.Hub,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		app:         ctx,
		disp:        disp,
		hub:         hub,
		logger:      logger,
		CallTimeout: defaultCallTimeout,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response failed", "err", err)
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
