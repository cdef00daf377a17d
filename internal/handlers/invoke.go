package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clanofthecloud/cloudbridge/internal/models"
)

type invokeRequest struct {
	Code    int            `json:"code"`
	Payload models.Payload `json:"payload"`
	Message string         `json:"message"`
}

// HandleInvoke lets a developer complete an arbitrary handler by hand.
func (h *Handler) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseHandlerID(chi.URLParam(r, "handlerID"))
	if err != nil {
		h.badRequest(w, "invalid handler id")
		return
	}

	var req invokeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		h.badRequest(w, "invalid json body")
		return
	}

	h.app.Invoker().InvokeError(id, models.ErrorCode(req.Code), req.Payload, req.Message)
	w.WriteHeader(http.StatusNoContent)
}

type historyEntry struct {
	Seq       uint64           `json:"seq"`
	Handler   models.HandlerID `json:"handler"`
	Result    json.RawMessage  `json:"result"`
	Delivered bool             `json:"delivered"`
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	hist := h.disp.History()
	out := make([]historyEntry, 0, len(hist))
	for _, d := range hist {
		raw := json.RawMessage(d.Raw)
		if !json.Valid(raw) {
			raw, _ = json.Marshal(d.Raw)
		}
		out = append(out, historyEntry{
			Seq:       d.Seq,
			Handler:   d.Handler,
			Result:    raw,
			Delivered: d.Delivered,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
