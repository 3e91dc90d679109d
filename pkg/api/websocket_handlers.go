package api

import (
	"encoding/json"
	"errors"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/arm-teleop/domain/diagnostic"
	customlog "github.com/open-teleop/arm-teleop/pkg/log"
)

// statusPushInterval is the cadence of status frames to each monitor
// client.
const statusPushInterval = 1 * time.Second

// RegisterStatusRoutes wires the WebSocket status stream into the app.
func RegisterStatusRoutes(app *fiber.App, stats *diagnostic.SessionStatsService, logger customlog.Logger) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(func(conn *websocket.Conn) {
		StatusWebSocketHandler(conn, logger, stats)
	}))

	logger.Infof("Registered status WebSocket endpoint at /ws/status")
}

// StatusWebSocketHandler streams session status frames to one monitor
// client at a fixed cadence until the client goes away.
func StatusWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, stats *diagnostic.SessionStatsService) {
	logger.Infof("Status WebSocket connected: %s", conn.RemoteAddr())

	// The stream is push-only, but reading is what notices the peer
	// closing the connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.Infof("Status WebSocket disconnected: %s", conn.RemoteAddr())
			return
		case <-ticker.C:
			frame := StatusFrame{Type: "session_status", Session: stats.Status()}
			data, err := json.Marshal(frame)
			if err != nil {
				logger.Errorf("Failed to marshal status frame: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Errorf("Status WS write error: %v", err)
				} else {
					// Don't log normal closures as errors
					if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
						logger.Infof("Status WS connection closed: %v", err)
					} else {
						logger.Infof("Status WS connection closed normally.")
					}
				}
				return
			}
		}
	}
}
