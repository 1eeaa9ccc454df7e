package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// upgradeOnly lets WebSocket handshakes through and rejects plain requests.
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// streamTasks handles GET /ws/tasks. Every committed change is written to
// the socket as a TaskEvent frame. Inbound frames are read only to notice
// the client going away.
func (h *handlers) streamTasks(c *websocket.Conn) {
	sub := h.hub.Subscribe()
	defer sub.Close()

	h.logger.Info("Task stream opened", "remote", c.RemoteAddr().String())
	defer h.logger.Info("Task stream closed", "remote", c.RemoteAddr().String())

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warn("Task stream read error", "error", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case evt, ok := <-sub.Events():
			if !ok {
				_ = c.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
				return
			}
			if err := c.WriteJSON(evt); err != nil {
				h.logger.Warn("Task stream write failed", "error", err)
				return
			}
		}
	}
}
