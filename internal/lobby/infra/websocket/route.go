package websocket

import (
	"context"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"github.com/sgdat/bitfebay/internal/shared/websocket"
)

// RegisterRoutes mounts the lobby announce stream. Each connection gets a
// session with its own read and write pumps; the read pump blocks until the
// peer disconnects, after which the session is unregistered from the hub.
func RegisterRoutes(app *fiber.App, hub *websocket.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/lobby", fiberws.New(func(conn *fiberws.Conn) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		client := websocket.NewClient(hub, conn)
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}))
}
