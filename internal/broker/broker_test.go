package broker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBrokerDeliversToAllSubscribers(t *testing.T) {
	b := NewLocalBroker()

	var first, second []Event
	b.Subscribe(func(e Event) { first = append(first, e) })
	b.Subscribe(func(e Event) { second = append(second, e) })

	event := Event{RoomID: "r1", Name: "messageReceived", Data: json.RawMessage(`{"content":"hi"}`)}
	require.NoError(t, b.PublishRoomEvent(context.Background(), event))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "r1", first[0].RoomID)
	assert.Equal(t, "messageReceived", first[0].Name)
	assert.JSONEq(t, `{"content":"hi"}`, string(first[0].Data))
}

func TestLocalBrokerPublishWithoutSubscribers(t *testing.T) {
	b := NewLocalBroker()
	require.NoError(t, b.PublishRoomEvent(context.Background(), Event{RoomID: "r1", Name: "userJoinedRoom"}))
	require.NoError(t, b.Close())
}

func TestLocalBrokerPreservesPublishOrder(t *testing.T) {
	b := NewLocalBroker()

	var seen []string
	b.Subscribe(func(e Event) { seen = append(seen, e.Name) })

	ctx := context.Background()
	require.NoError(t, b.PublishRoomEvent(ctx, Event{RoomID: "r1", Name: "userJoinedRoom"}))
	require.NoError(t, b.PublishRoomEvent(ctx, Event{RoomID: "r1", Name: "messageReceived"}))
	require.NoError(t, b.PublishRoomEvent(ctx, Event{RoomID: "r1", Name: "userLeftRoom"}))

	assert.Equal(t, []string{"userJoinedRoom", "messageReceived", "userLeftRoom"}, seen)
}
