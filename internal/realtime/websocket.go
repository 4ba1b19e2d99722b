package realtime

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/relieflink/disaster-response-api/internal/logger"
)

// clientMessage is a subscription control frame from a connected client.
type clientMessage struct {
	Action     string `json:"action"` // join_disaster | leave_disaster | join_general
	DisasterID string `json:"disaster_id,omitempty"`
}

// UpgradeRequired rejects non-websocket requests on the /ws route.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket endpoint bound to the hub. Each
// connection gets a subscriber with a writer goroutine; the read loop
// handles join/leave frames until the peer disconnects.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		log := logger.GetLogger("realtime")
		sub := newSubscriber()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range sub.send {
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}()

		_ = conn.WriteJSON(fiber.Map{
			"event":     "connected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"message":   "Connected to disaster response updates",
		})

		for {
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				break
			}

			switch msg.Action {
			case "join_disaster":
				if msg.DisasterID == "" {
					continue
				}
				hub.join(sub, disasterRoom(msg.DisasterID))
				_ = conn.WriteJSON(fiber.Map{
					"event":       "joined_disaster",
					"disaster_id": msg.DisasterID,
					"message":     "Successfully joined disaster updates",
				})
			case "leave_disaster":
				hub.leave(sub, disasterRoom(msg.DisasterID))
			case "join_general":
				hub.join(sub, generalRoom)
			default:
				log.Debugf("ignoring unknown action %q", msg.Action)
			}
		}

		// Membership must be gone before the send channel closes; deliver
		// only writes to subscribers it can still find in a room.
		hub.leaveAll(sub)
		close(sub.send)
		<-done
	})
}
