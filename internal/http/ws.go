package http

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/hub"
)

// wsCommand is an inbound client message. The socket only joins and leaves
// topics; every state mutation goes through REST.
type wsCommand struct {
	Type     string `json:"type"`
	CenterID string `json:"center_id"`
}

// RegisterWS mounts the live notification endpoint.
func RegisterWS(app *fiber.App, h *hub.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		sub := h.Subscribe()
		defer h.Disconnect(sub)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for evt := range sub.Events() {
				if err := conn.WriteJSON(evt); err != nil {
					return
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var cmd wsCommand
			if err := json.Unmarshal(msg, &cmd); err != nil {
				log.Debug().Err(err).Msg("ws: dropping malformed command")
				continue
			}
			switch cmd.Type {
			case "join_center":
				if cmd.CenterID != "" {
					h.Join(sub, hub.CenterTopic(cmd.CenterID))
				}
			case "leave_center":
				if cmd.CenterID != "" {
					h.Leave(sub, hub.CenterTopic(cmd.CenterID))
				}
			case "join_ops":
				h.Join(sub, hub.OpsTopic)
			case "leave_ops":
				h.Leave(sub, hub.OpsTopic)
			default:
				log.Debug().Str("type", cmd.Type).Msg("ws: unknown command")
			}
		}

		h.Disconnect(sub)
		<-done
	}))
}
