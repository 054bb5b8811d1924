// Package handlers serves the simulator dashboard and its JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pollfish/pollfish-bridge/internal/events"
	"github.com/pollfish/pollfish-bridge/internal/pollfish"
	"github.com/pollfish/pollfish-bridge/internal/simulator"
	"github.com/pollfish/pollfish-bridge/internal/ws"
)

// Defaults fill in init requests that leave fields out.
type Defaults struct {
	AndroidAPIKey string
	IOSAPIKey     string
	ReleaseMode   bool
	// Signature is only applied when the request carries reward info.
	Signature     string
}

type Deps struct {
	Client    *pollfish.Client
	Simulator *simulator.Bridge
	Emitter   *events.Emitter
	Hub       *ws.Hub
	Defaults  Defaults
}

type Handler struct {
	Deps
	logger *slog.Logger
}

func New(deps Deps, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Deps: deps, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response", "err", err)
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (h *Handler) serverError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	switch {
	case errors.Is(err, simulator.ErrNotInitialized), errors.Is(err, simulator.ErrPanelClosed):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, pollfish.ErrQueryTimeout):
		h.writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
		return
	}
	h.logger.Error("handler error", "path", r.URL.Path, "err", err)
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
