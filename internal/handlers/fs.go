package handlers

import "net/http"

type okResponse struct {
	OK bool `json:"ok"`
}

func (h *Handler) HandleDataDirectory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"path": h.app.DataDirectory()})
}

func (h *Handler) HandleCreateDirectory(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.badRequest(w, "missing path param")
		return
	}
	h.writeJSON(w, http.StatusOK, okResponse{OK: h.app.CreateDirectory(path)})
}

func (h *Handler) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.badRequest(w, "missing path param")
		return
	}
	h.writeJSON(w, http.StatusOK, okResponse{OK: h.app.DeleteFile(path)})
}
