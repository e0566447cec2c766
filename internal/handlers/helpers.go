package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chat-backend/internal/pagination"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString("userID")
}

// bindPagination parses page/pageSize query params, replying 400 on failure.
func bindPagination(c *gin.Context) (pagination.Params, bool) {
	var page pagination.Params
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and pageSize are required"})
		return pagination.Params{}, false
	}
	return page, true
}
