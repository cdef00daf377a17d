package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clanofthecloud/cloudbridge/internal/models"
	"github.com/clanofthecloud/cloudbridge/internal/push"
)

type startedResponse struct {
	Started bool   `json:"started"`
	State   string `json:"state,omitempty"`
}

func started(op *push.Operation) startedResponse {
	if op == nil {
		return startedResponse{}
	}
	return startedResponse{Started: true, State: op.State().String()}
}

func (h *Handler) HandleQueryRegisterDevice(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusAccepted, started(h.app.QueryRegisterDevice()))
}

func (h *Handler) HandleUnregisterDevice(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusAccepted, started(h.app.UnregisterDevice()))
}

func (h *Handler) HandleRegisterWithHandler(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseHandlerID(chi.URLParam(r, "handlerID"))
	if err != nil {
		h.badRequest(w, "invalid handler id")
		return
	}
	h.writeJSON(w, http.StatusAccepted, started(h.app.RegisterWithHandler(id)))
}

// HandleRegisterAndWait runs a full round trip: it allocates a handler on
// the dispatcher, starts the registration and answers with the result
// message the handler received.
func (h *Handler) HandleRegisterAndWait(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.CallTimeout)
	defer cancel()

	res, err := h.disp.Call(ctx, func(id models.HandlerID) {
		h.app.RegisterWithHandler(id)
	})
	if err != nil {
		h.writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	info := h.app.CollectDeviceInformation(r.Context())
	h.writeJSON(w, http.StatusOK, json.RawMessage(info))
}
