package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/clanofthecloud/cloudbridge/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) HandleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "err", err)
		return
	}

	client := ws.NewClient(conn, ws.TopicEvents)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	go client.WritePump()
	client.ReadPump()
}
