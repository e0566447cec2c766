package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-backend/internal/broker"
	"chat-backend/internal/models"
	"chat-backend/internal/pagination"
	"chat-backend/internal/repositories"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	args := m.Called(ctx, room)
	var created models.Room
	if val := args.Get(0); val != nil {
		created = val.(models.Room)
	}
	return created, args.Error(1)
}

func (m *RoomRepositoryMock) UpdateRoom(ctx context.Context, roomID string, patch models.RoomPatch) (models.Room, error) {
	args := m.Called(ctx, roomID, patch)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) AddMembers(ctx context.Context, roomID string, members []string) (models.Room, error) {
	args := m.Called(ctx, roomID, members)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) RemoveMembers(ctx context.Context, roomID string, members []string) (models.Room, error) {
	args := m.Called(ctx, roomID, members)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) ListRooms(ctx context.Context, userID string, page pagination.Params) (models.RoomPage, error) {
	args := m.Called(ctx, userID, page)
	var result models.RoomPage
	if val := args.Get(0); val != nil {
		result = val.(models.RoomPage)
	}
	return result, args.Error(1)
}

func (m *RoomRepositoryMock) DeleteRoom(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	args := m.Called(ctx, msg)
	var created models.Message
	if val := args.Get(0); val != nil {
		created = val.(models.Message)
	}
	return created, args.Error(1)
}

func (m *MessageRepositoryMock) EditMessage(ctx context.Context, messageID string, content string) (models.Message, error) {
	args := m.Called(ctx, messageID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) HideRoomForUser(ctx context.Context, roomID string, userID string) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ListRoomMessages(ctx context.Context, roomID string, userID string, page pagination.Params) (models.MessagePage, error) {
	args := m.Called(ctx, roomID, userID, page)
	var result models.MessagePage
	if val := args.Get(0); val != nil {
		result = val.(models.MessagePage)
	}
	return result, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversations(ctx context.Context, userID string, page pagination.Params) (models.ConversationPage, error) {
	args := m.Called(ctx, userID, page)
	var result models.ConversationPage
	if val := args.Get(0); val != nil {
		result = val.(models.ConversationPage)
	}
	return result, args.Error(1)
}

type SubscriptionRepositoryMock struct {
	mock.Mock
}

func (m *SubscriptionRepositoryMock) UpsertSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	args := m.Called(ctx, sub)
	var stored models.Subscription
	if val := args.Get(0); val != nil {
		stored = val.(models.Subscription)
	}
	return stored, args.Error(1)
}

func (m *SubscriptionRepositoryMock) IncrementMessageCount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type BrokerMock struct {
	mock.Mock
}

func (m *BrokerMock) PublishRoomEvent(ctx context.Context, event broker.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *BrokerMock) Subscribe(handler broker.Handler) {
	m.Called(handler)
}

func (m *BrokerMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.SubscriptionRepository = (*SubscriptionRepositoryMock)(nil)
var _ broker.Broker = (*BrokerMock)(nil)
