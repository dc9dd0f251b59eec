package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspool/carpool/pkg/logger"
)

func allowAll(int64, int64) bool { return true }
func denyAll(int64, int64) bool { return false }

func startHub(t *testing.T) *Hub {
	hub := NewHub(logger.NewNop())
	go hub.Run()
	return hub
}

func registerClient(t *testing.T, hub *Hub, userID int64, canJoin JoinAuthorizer) *Client {
	client := NewClient(hub, nil, userID, canJoin, logger.NewNop())
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.ActiveConnections() > 0
	}, time.Second, 5*time.Millisecond)
	return client
}

func readEvent(t *testing.T, c *Client) Event {
	select {
	case data := <-c.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// TestRideTopic tests topic naming
func TestRideTopic(t *testing.T) {
	assert.Equal(t, "ride_42", RideTopic(42))
}

// TestJoinAndPublish tests that a joined client receives topic events
func TestJoinAndPublish(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, 7, allowAll)

	client.Join(3)
	ev := readEvent(t, client)
	assert.Equal(t, "joined", ev.Type)
	assert.Equal(t, 1, hub.TopicSubscribers(RideTopic(3)))

	hub.Publish(RideTopic(3), Event{Type: "message", Data: "hi"})
	ev = readEvent(t, client)
	assert.Equal(t, "message", ev.Type)
	assert.Equal(t, "hi", ev.Data)
}

// TestTopicIsolation tests that events do not leak across ride topics
func TestTopicIsolation(t *testing.T) {
	hub := startHub(t)
	joined := registerClient(t, hub, 7, allowAll)
	other := NewClient(hub, nil, 8, allowAll, logger.NewNop())
	hub.Register(other)
	require.Eventually(t, func() bool {
		return hub.ActiveConnections() == 2
	}, time.Second, 5*time.Millisecond)

	joined.Join(3)
	readEvent(t, joined) // drain the joined ack
	other.Join(4)
	readEvent(t, other)

	hub.Publish(RideTopic(3), Event{Type: "message", Data: "hi"})

	ev := readEvent(t, joined)
	assert.Equal(t, "message", ev.Type)
	assert.Empty(t, other.Send, "client in another topic must not receive the event")
}

// TestJoinRejected tests that an unauthorized join is refused with an error
// event
func TestJoinRejected(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, 99, denyAll)

	client.Join(3)
	ev := readEvent(t, client)
	assert.Equal(t, "error", ev.Type)
	assert.Equal(t, 0, hub.TopicSubscribers(RideTopic(3)))
}

// TestLeave tests that leaving stops delivery
func TestLeave(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, 7, allowAll)

	client.Join(3)
	readEvent(t, client)
	client.Leave(3)

	hub.Publish(RideTopic(3), Event{Type: "message", Data: "hi"})
	assert.Empty(t, client.Send)
	assert.Equal(t, 0, hub.TopicSubscribers(RideTopic(3)))
}
