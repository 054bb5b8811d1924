package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pollfish/pollfish-bridge/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}

	client := ws.NewClient(h.Hub, conn)
	h.Hub.Register(client)
	go client.WritePump()

	client.ReadPump(func(action string) {
		if err := h.act(action); err != nil {
			h.logger.Warn("ws action failed", "action", action, "err", err)
		}
	})
}
