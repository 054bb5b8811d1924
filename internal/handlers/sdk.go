package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pollfish/pollfish-bridge/internal/events"
	"github.com/pollfish/pollfish-bridge/internal/params"
	"github.com/pollfish/pollfish-bridge/internal/simulator"
)

var errUnknownAction = errors.New("unknown action")

var validate = validator.New()

const (
	actionShow        = "show"
	actionHide        = "hide"
	actionComplete    = "complete"
	actionReject      = "reject"
	actionNotEligible = "not_eligible"
)

type initRequest struct {
	AndroidAPIKey     string             `json:"android_api_key"`
	IOSAPIKey         string             `json:"ios_api_key"`
	IndicatorPosition string             `json:"indicator_position" validate:"omitempty,oneof=top-left top-right middle-left middle-right bottom-left bottom-right"`
	IndicatorPadding  *int               `json:"indicator_padding" validate:"omitempty,min=0,max=1000"`
	OfferwallMode     bool               `json:"offerwall_mode"`
	ReleaseMode       *bool              `json:"release_mode"`
	RewardMode        bool               `json:"reward_mode"`
	RequestUUID       string             `json:"request_uuid" validate:"omitempty,max=128"`
	UserProperties    map[string]string  `json:"user_properties"`
	RewardInfo        *params.RewardInfo `json:"reward_info"`
	ClickID           string             `json:"click_id" validate:"omitempty,max=256"`
	Signature         string             `json:"signature"`
}

func (req initRequest) params(d Defaults) (params.Params, error) {
	android, ios := req.AndroidAPIKey, req.IOSAPIKey
	if android == "" {
		android = d.AndroidAPIKey
	}
	if ios == "" {
		ios = d.IOSAPIKey
	}
	signature := req.Signature
	if signature == "" && req.RewardInfo != nil {
		signature = d.Signature
	}

	b := params.NewBuilder(android, ios).
		OfferwallMode(req.OfferwallMode).
		ReleaseMode(d.ReleaseMode).
		RewardMode(req.RewardMode).
		RequestUUID(req.RequestUUID).
		UserProperties(req.UserProperties).
		RewardInfo(req.RewardInfo).
		ClickID(req.ClickID).
		Signature(signature)

	if req.IndicatorPosition != "" {
		pos, err := params.ParsePosition(req.IndicatorPosition)
		if err != nil {
			return params.Params{}, err
		}
		b.IndicatorPosition(pos)
	}
	if req.IndicatorPadding != nil {
		b.IndicatorPadding(*req.IndicatorPadding)
	}
	if req.ReleaseMode != nil {
		b.ReleaseMode(*req.ReleaseMode)
	}
	return b.Build(), nil
}

func (h *Handler) HandleInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, fmt.Errorf("invalid body: %w", err))
		return
	}

	if err := validate.Struct(req); err != nil {
		h.badRequest(w, err)
		return
	}

	p, err := req.params(h.Defaults)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	if err := h.Client.Init(p); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// act runs one dashboard action against the client or the simulated user.
func (h *Handler) act(action string) error {
	switch action {
	case actionShow:
		return h.Client.Show()
	case actionHide:
		return h.Client.Hide()
	case actionComplete:
		return h.Simulator.Complete()
	case actionReject:
		return h.Simulator.Reject()
	case actionNotEligible:
		return h.Simulator.NotEligible()
	}
	return fmt.Errorf("%w %q", errUnknownAction, action)
}

func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	if err := h.act(chi.URLParam(r, "action")); err != nil {
		if errors.Is(err, errUnknownAction) {
			h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type stateResponse struct {
	Simulator simulator.State `json:"simulator"`
	PanelOpen bool            `json:"panel_open"`
	Present   bool            `json:"present"`
	Listeners map[string]int  `json:"listeners"`
	Clients   int             `json:"clients"`
}

func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	open, err := h.Client.IsPollfishPanelOpen(ctx)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	present, err := h.Client.IsPollfishPresent(ctx)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	listeners := make(map[string]int)
	for _, t := range events.All() {
		listeners[t.String()] = h.Client.Registry().Len(t)
	}

	h.writeJSON(w, http.StatusOK, stateResponse{
		Simulator: h.Simulator.State(),
		PanelOpen: open,
		Present:   present,
		Listeners: listeners,
		Clients:   h.Hub.Count(),
	})
}

// HandleEmit pushes an event as if the native SDK had sent it. The request
// body is the payload.
func (h *Handler) HandleEmit(w http.ResponseWriter, r *http.Request) {
	t, ok := events.ParseEventType(chi.URLParam(r, "eventType"))
	if !ok {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown event type"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		h.badRequest(w, err)
		return
	}

	delivered := h.Emitter.EmitString(t.String(), string(body))
	h.writeJSON(w, http.StatusOK, map[string]int{"delivered": delivered})
}
