package models

import (
	"encoding/json"
	"time"
)

// Realtime event names carried in the websocket envelope.
const (
	EventUserConnected    = "userConnected"
	EventUserDisconnected = "userDisconnected"
	EventSendMessage      = "sendMessage"
	EventDeleteMessage    = "deleteMessage"

	EventUserJoinedRoom  = "userJoinedRoom"
	EventUserLeftRoom    = "userLeftRoom"
	EventMessageReceived = "messageReceived"
	EventMessageDeleted  = "messageDeleted"
	EventError           = "error"
)

// Envelope frames every websocket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UserConnectionRequest joins or leaves a room group.
type UserConnectionRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

// SendMessageRequest asks the router to store and fan out a message.
type SendMessageRequest struct {
	RoomID      string   `json:"roomId" validate:"required"`
	SenderID    string   `json:"senderId" validate:"required"`
	ReceiverIDs []string `json:"receiverIds" validate:"required"`
	Content     string   `json:"content" validate:"required"`
}

// DeleteMessageRequest removes a single message for everyone.
type DeleteMessageRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	RoomID    string `json:"roomId" validate:"required"`
}

// MessageReceivedPayload is broadcast to a room group after a message is stored.
type MessageReceivedPayload struct {
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	SenderID  string    `json:"senderId"`
	RoomID    string    `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageDeletedPayload is broadcast after a delete-for-everyone.
type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

// RoomPayload carries just a room id, used by join/leave broadcasts.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// ErrorPayload is sent to the originating connection only.
type ErrorPayload struct {
	Message string `json:"message"`
}
