package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/broker"
	"chat-backend/internal/mocks"
	"chat-backend/internal/models"
)

// dialRouter stands up a full websocket stack: gin, the router, a local
// broker, and a dialed client connection.
func dialRouter(t *testing.T, messageRepo *mocks.MessageRepositoryMock, subscriptions *mocks.SubscriptionRepositoryMock) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	router := NewRouter(hub, broker.NewLocalBroker(), messageRepo, subscriptions)

	engine := gin.New()
	engine.GET("/ws", router.Handle)
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(models.Envelope{Event: event, Data: raw}))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()
	var envelope models.Envelope
	require.NoError(t, conn.ReadJSON(&envelope))
	return envelope
}

func TestJoinRoomBroadcastsToGroup(t *testing.T) {
	conn := dialRouter(t, new(mocks.MessageRepositoryMock), new(mocks.SubscriptionRepositoryMock))

	sendEnvelope(t, conn, models.EventUserConnected, models.UserConnectionRequest{RoomID: "r1"})

	envelope := readEnvelope(t, conn)
	require.Equal(t, models.EventUserJoinedRoom, envelope.Event)
	var payload models.RoomPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, "r1", payload.RoomID)
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	conn := dialRouter(t, new(mocks.MessageRepositoryMock), new(mocks.SubscriptionRepositoryMock))

	sendEnvelope(t, conn, models.EventUserConnected, models.UserConnectionRequest{RoomID: "r1"})
	require.Equal(t, models.EventUserJoinedRoom, readEnvelope(t, conn).Event)

	sendEnvelope(t, conn, models.EventUserDisconnected, models.UserConnectionRequest{RoomID: "r1"})

	// The leave broadcast goes out after the client is removed from the
	// group, so the next frame must not be userLeftRoom. An unknown event
	// is used to force a reply and prove the connection is still live.
	sendEnvelope(t, conn, "bogus", models.RoomPayload{RoomID: "r1"})
	envelope := readEnvelope(t, conn)
	assert.Equal(t, models.EventError, envelope.Event)
}

func TestSendMessageStoresAndBroadcasts(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	subscriptions := new(mocks.SubscriptionRepositoryMock)
	conn := dialRouter(t, messageRepo, subscriptions)

	stored := models.Message{
		ID:       "m1",
		RoomID:   "r1",
		SenderID: "u1",
		Content:  "hello",
	}
	messageRepo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
		return msg.RoomID == "r1" && msg.SenderID == "u1" && msg.Content == "hello"
	})).Return(stored, nil).Once()
	subscriptions.On("IncrementMessageCount", mock.Anything, "u1").Return(nil).Once()

	sendEnvelope(t, conn, models.EventUserConnected, models.UserConnectionRequest{RoomID: "r1"})
	require.Equal(t, models.EventUserJoinedRoom, readEnvelope(t, conn).Event)

	sendEnvelope(t, conn, models.EventSendMessage, models.SendMessageRequest{
		RoomID:      "r1",
		SenderID:    "u1",
		ReceiverIDs: []string{"u2"},
		Content:     "hello",
	})

	envelope := readEnvelope(t, conn)
	require.Equal(t, models.EventMessageReceived, envelope.Event)
	var payload models.MessageReceivedPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, "m1", payload.MessageID)
	assert.Equal(t, "u1", payload.SenderID)
	assert.Equal(t, "hello", payload.Content)
	messageRepo.AssertExpectations(t)
	subscriptions.AssertExpectations(t)
}

func TestSendMessageValidationFailureRepliesToOrigin(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	conn := dialRouter(t, messageRepo, new(mocks.SubscriptionRepositoryMock))

	sendEnvelope(t, conn, models.EventSendMessage, map[string]any{
		"roomId":      "r1",
		"senderId":    "u1",
		"receiverIds": []string{"u2"},
	})

	envelope := readEnvelope(t, conn)
	require.Equal(t, models.EventError, envelope.Event)
	var payload models.ErrorPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, "Content is required", payload.Message)
	messageRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestDeleteMessageBroadcastsRegardlessOfExistence(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	conn := dialRouter(t, messageRepo, new(mocks.SubscriptionRepositoryMock))

	messageRepo.On("DeleteMessage", mock.Anything, "never-stored").Return(nil).Once()

	sendEnvelope(t, conn, models.EventUserConnected, models.UserConnectionRequest{RoomID: "r1"})
	require.Equal(t, models.EventUserJoinedRoom, readEnvelope(t, conn).Event)

	sendEnvelope(t, conn, models.EventDeleteMessage, models.DeleteMessageRequest{
		MessageID: "never-stored",
		RoomID:    "r1",
	})

	envelope := readEnvelope(t, conn)
	require.Equal(t, models.EventMessageDeleted, envelope.Event)
	var payload models.MessageDeletedPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, "never-stored", payload.MessageID)
	messageRepo.AssertExpectations(t)
}

func TestUnknownEventReturnsError(t *testing.T) {
	conn := dialRouter(t, new(mocks.MessageRepositoryMock), new(mocks.SubscriptionRepositoryMock))

	sendEnvelope(t, conn, "typingIndicator", models.RoomPayload{RoomID: "r1"})

	envelope := readEnvelope(t, conn)
	require.Equal(t, models.EventError, envelope.Event)
	var payload models.ErrorPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Contains(t, payload.Message, "unknown event")
}

func TestMalformedEnvelopeReturnsError(t *testing.T) {
	conn := dialRouter(t, new(mocks.MessageRepositoryMock), new(mocks.SubscriptionRepositoryMock))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	envelope := readEnvelope(t, conn)
	assert.Equal(t, models.EventError, envelope.Event)
}
