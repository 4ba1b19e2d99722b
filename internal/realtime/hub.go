// Package realtime fans API change events out to websocket subscribers.
// Publishing is fire-and-forget: a full queue or a slow subscriber drops
// events rather than blocking the request path.
package realtime

import (
	"context"
	"sync"

	"github.com/relieflink/disaster-response-api/internal/logger"
)

// Event names pushed to subscribers.
const (
	EventDisasterUpdated    = "disaster_updated"
	EventResourcesUpdated   = "resources_updated"
	EventSocialMediaUpdated = "social_media_updated"
)

// Change types carried in update payloads.
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

const generalRoom = "general_updates"

// UpdatePayload is the body of a pushed event: the changed record on
// create/update, just the id on delete.
type UpdatePayload struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Message is the wire frame sent to subscribers.
type Message struct {
	Event   string        `json:"event"`
	Payload UpdatePayload `json:"payload"`
}

type event struct {
	rooms   []string
	message Message
}

// Hub tracks room membership and distributes events. Rooms are keyed
// "disaster_<id>" plus one global room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*subscriber]struct{}
	queue chan event
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*subscriber]struct{}),
		queue: make(chan event, 256),
	}
}

// Run consumes the publish queue until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.queue:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*subscriber]struct{})
	for _, room := range ev.rooms {
		for sub := range h.rooms[room] {
			if _, dup := seen[sub]; dup {
				continue
			}
			seen[sub] = struct{}{}

			select {
			case sub.send <- ev.message:
			default:
				// Slow subscriber; drop rather than block delivery.
			}
		}
	}
}

func (h *Hub) publish(rooms []string, msg Message) {
	select {
	case h.queue <- event{rooms: rooms, message: msg}:
	default:
		logger.GetLogger("realtime").Warn("event queue full, dropping event")
	}
}

// EmitDisasterUpdate pushes to the disaster's room and the global room.
func (h *Hub) EmitDisasterUpdate(disasterID string, payload UpdatePayload) {
	h.publish(
		[]string{disasterRoom(disasterID), generalRoom},
		Message{Event: EventDisasterUpdated, Payload: payload},
	)
}

// EmitResourceUpdate pushes to the disaster's room and the global room.
func (h *Hub) EmitResourceUpdate(disasterID string, payload UpdatePayload) {
	h.publish(
		[]string{disasterRoom(disasterID), generalRoom},
		Message{Event: EventResourcesUpdated, Payload: payload},
	)
}

// EmitSocialMediaUpdate pushes to the disaster's room only.
func (h *Hub) EmitSocialMediaUpdate(disasterID string, payload UpdatePayload) {
	h.publish(
		[]string{disasterRoom(disasterID)},
		Message{Event: EventSocialMediaUpdated, Payload: payload},
	)
}

func disasterRoom(disasterID string) string {
	return "disaster_" + disasterID
}

func (h *Hub) join(sub *subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*subscriber]struct{})
	}
	h.rooms[room][sub] = struct{}{}
}

func (h *Hub) leave(sub *subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms[room], sub)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) leaveAll(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, subs := range h.rooms {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.rooms, room)
		}
	}
}

type subscriber struct {
	send chan Message
}

func newSubscriber() *subscriber {
	return &subscriber{send: make(chan Message, 16)}
}
