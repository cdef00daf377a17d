package handlers

import "net/http"

type lifecycleResponse struct {
	RC    int    `json:"rc"`
	State string `json:"state"`
}

func (h *Handler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	rc := h.app.Suspended()
	h.writeJSON(w, http.StatusOK, lifecycleResponse{RC: rc, State: h.app.Lifecycle().State().String()})
}

func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	rc := h.app.Resumed()
	h.writeJSON(w, http.StatusOK, lifecycleResponse{RC: rc, State: h.app.Lifecycle().State().String()})
}
