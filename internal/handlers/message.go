package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/repositories"
)

// MessageHandler serves message listings and edits.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo}
}

// GetRoomMessages handles GET /rooms/:room_id/messages: the room history
// visible to the caller, newest first, paginated.
func (h *MessageHandler) GetRoomMessages(c *gin.Context) {
	page, ok := bindPagination(c)
	if !ok {
		return
	}

	result, err := h.messageRepo.ListRoomMessages(c.Request.Context(), c.Param("room_id"), userIDFromContext(c), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListConversations handles GET /conversations: the caller's inbox, one row
// per room with the latest message the caller can still see. Zero matches is
// an empty page, not an error.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	page, ok := bindPagination(c)
	if !ok {
		return
	}

	result, err := h.messageRepo.ListConversations(c.Request.Context(), userIDFromContext(c), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// EditMessage handles PUT /messages/:message_id: replaces the content and
// marks the message edited.
func (h *MessageHandler) EditMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.EditMessage(c.Request.Context(), c.Param("message_id"), req.Content)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}

	c.JSON(http.StatusOK, msg)
}
