package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveMessage(t *testing.T, sub *subscriber) Message {
	t.Helper()
	select {
	case msg := <-sub.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func assertNoMessage(t *testing.T, sub *subscriber) {
	t.Helper()
	select {
	case msg := <-sub.send:
		t.Fatalf("unexpected message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_DisasterUpdateReachesRoomAndGeneral(t *testing.T) {
	hub := runHub(t)

	roomSub := newSubscriber()
	generalSub := newSubscriber()
	hub.join(roomSub, disasterRoom("d1"))
	hub.join(generalSub, generalRoom)

	hub.EmitDisasterUpdate("d1", UpdatePayload{Type: ChangeCreate, ID: "d1"})

	for _, sub := range []*subscriber{roomSub, generalSub} {
		msg := receiveMessage(t, sub)
		assert.Equal(t, EventDisasterUpdated, msg.Event)
		assert.Equal(t, ChangeCreate, msg.Payload.Type)
	}
}

func TestHub_SocialMediaUpdateSkipsGeneral(t *testing.T) {
	hub := runHub(t)

	roomSub := newSubscriber()
	generalSub := newSubscriber()
	hub.join(roomSub, disasterRoom("d1"))
	hub.join(generalSub, generalRoom)

	hub.EmitSocialMediaUpdate("d1", UpdatePayload{Type: ChangeUpdate})

	msg := receiveMessage(t, roomSub)
	assert.Equal(t, EventSocialMediaUpdated, msg.Event)
	assertNoMessage(t, generalSub)
}

func TestHub_OtherRoomsDoNotReceive(t *testing.T) {
	hub := runHub(t)

	otherSub := newSubscriber()
	hub.join(otherSub, disasterRoom("d2"))

	hub.EmitResourceUpdate("d1", UpdatePayload{Type: ChangeCreate})

	assertNoMessage(t, otherSub)
}

func TestHub_DuplicateMembershipDeliversOnce(t *testing.T) {
	hub := runHub(t)

	// Subscribed to both target rooms of a disaster update.
	sub := newSubscriber()
	hub.join(sub, disasterRoom("d1"))
	hub.join(sub, generalRoom)

	hub.EmitDisasterUpdate("d1", UpdatePayload{Type: ChangeUpdate, ID: "d1"})

	receiveMessage(t, sub)
	assertNoMessage(t, sub)
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := runHub(t)

	sub := newSubscriber()
	hub.join(sub, disasterRoom("d1"))
	hub.leave(sub, disasterRoom("d1"))

	hub.EmitDisasterUpdate("d1", UpdatePayload{Type: ChangeDelete, ID: "d1"})

	assertNoMessage(t, sub)
}

func TestHub_LeaveAllClearsEveryRoom(t *testing.T) {
	hub := runHub(t)

	sub := newSubscriber()
	hub.join(sub, disasterRoom("d1"))
	hub.join(sub, disasterRoom("d2"))
	hub.join(sub, generalRoom)
	hub.leaveAll(sub)

	hub.EmitDisasterUpdate("d1", UpdatePayload{})
	hub.EmitDisasterUpdate("d2", UpdatePayload{})

	assertNoMessage(t, sub)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := runHub(t)

	slow := &subscriber{send: make(chan Message)} // unbuffered, nobody reading
	healthy := newSubscriber()
	hub.join(slow, disasterRoom("d1"))
	hub.join(healthy, disasterRoom("d1"))

	hub.EmitDisasterUpdate("d1", UpdatePayload{Type: ChangeUpdate})

	msg := receiveMessage(t, healthy)
	require.Equal(t, EventDisasterUpdated, msg.Event)
}
