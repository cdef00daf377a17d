package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/clanofthecloud/cloudbridge/internal/handlers"
)

func New(h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)

	r.Route("/device", func(r chi.Router) {
		r.Get("/info", h.HandleDeviceInfo)
		r.Post("/register", h.HandleQueryRegisterDevice)
		r.Post("/register/wait", h.HandleRegisterAndWait)
		r.Post("/register/{handlerID}", h.HandleRegisterWithHandler)
		r.Post("/unregister", h.HandleUnregisterDevice)
	})

	r.Route("/fs", func(r chi.Router) {
		r.Get("/data-dir", h.HandleDataDirectory)
		r.Post("/dir", h.HandleCreateDirectory)
		r.Delete("/file", h.HandleDeleteFile)
	})

	r.Post("/lifecycle/suspend", h.HandleSuspend)
	r.Post("/lifecycle/resume", h.HandleResume)

	r.Get("/handlers/history", h.HandleHistory)
	r.Post("/handlers/{handlerID}/invoke", h.HandleInvoke)

	r.Get("/ws/events", h.HandleEventStream)

	return r
}
