package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/mocks"
	"chat-backend/internal/models"
	"chat-backend/internal/pagination"
	"chat-backend/internal/repositories"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.GET("/rooms/:room_id/messages", handler.GetRoomMessages)
	r.GET("/conversations", handler.ListConversations)
	r.PUT("/messages/:message_id", handler.EditMessage)
	return r
}

func TestGetRoomMessagesSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo)
	router := setupMessageRouter(handler)

	messageRepo.On("ListRoomMessages", mock.Anything, "r1", "u1", pagination.Params{Page: 1, PageSize: 20}).
		Return(models.MessagePage{
			TotalCount:  1,
			TotalPages:  1,
			CurrentPage: 1,
			Messages:    []models.Message{{ID: "m1", RoomID: "r1", SenderID: "u1", Content: "hi"}},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/r1/messages?page=1&pageSize=20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.MessagePage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "hi", page.Messages[0].Content)
	messageRepo.AssertExpectations(t)
}

func TestGetRoomMessagesRequiresPagination(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock))
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/rooms/r1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConversationsEmptyInbox(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo)
	router := setupMessageRouter(handler)

	messageRepo.On("ListConversations", mock.Anything, "u1", pagination.Params{Page: 3, PageSize: 50}).
		Return(models.ConversationPage{TotalCount: 0, TotalPages: 0, CurrentPage: 3, Conversations: []models.Conversation{}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations?page=3&pageSize=50", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.ConversationPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Zero(t, page.TotalCount)
	assert.Zero(t, page.TotalPages)
	assert.Empty(t, page.Conversations)
	messageRepo.AssertExpectations(t)
}

func TestListConversationsSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo)
	router := setupMessageRouter(handler)

	messageRepo.On("ListConversations", mock.Anything, "u1", pagination.Params{Page: 1, PageSize: 10}).
		Return(models.ConversationPage{
			TotalCount:  2,
			TotalPages:  1,
			CurrentPage: 1,
			Conversations: []models.Conversation{
				{Message: models.Message{ID: "m9", RoomID: "r2", Content: "later"}, RoomTitle: "ops"},
				{Message: models.Message{ID: "m3", RoomID: "r1", Content: "hi"}, RoomTitle: "dev"},
			},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations?page=1&pageSize=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.ConversationPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Conversations, 2)
	assert.Equal(t, "r2", page.Conversations[0].RoomID)
	messageRepo.AssertExpectations(t)
}

func TestEditMessageSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo)
	router := setupMessageRouter(handler)

	messageRepo.On("EditMessage", mock.Anything, "m1", "fixed").
		Return(models.Message{ID: "m1", Content: "fixed", IsEdited: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/messages/m1", bytes.NewBufferString(`{"content":"fixed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var msg models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.True(t, msg.IsEdited)
	messageRepo.AssertExpectations(t)
}

func TestEditMessageNotFound(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo)
	router := setupMessageRouter(handler)

	messageRepo.On("EditMessage", mock.Anything, "m404", "x").
		Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodPut, "/messages/m404", bytes.NewBufferString(`{"content":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditMessageMissingContent(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock))
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/messages/m1", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
