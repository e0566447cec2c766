package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/mocks"
	"chat-backend/internal/models"
)

func setupSubscriptionRouter(handler *SubscriptionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.PUT("/subscriptions", handler.UpsertSubscription)
	return r
}

func TestUpsertSubscriptionSuccess(t *testing.T) {
	subscriptionRepo := new(mocks.SubscriptionRepositoryMock)
	handler := NewSubscriptionHandler(subscriptionRepo)
	router := setupSubscriptionRouter(handler)

	subscriptionRepo.On("UpsertSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		return sub.UserID == "u1" && sub.SubscriptionType == "premium" && sub.Status == "active"
	})).Return(models.Subscription{ID: "s1", UserID: "u1", SubscriptionType: "premium", Status: "active"}, nil).Once()

	body := bytes.NewBufferString(`{"subscription_type":"premium","status":"active"}`)
	req := httptest.NewRequest(http.MethodPut, "/subscriptions", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var sub models.Subscription
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sub))
	assert.Equal(t, "s1", sub.ID)
	subscriptionRepo.AssertExpectations(t)
}

func TestUpsertSubscriptionMissingType(t *testing.T) {
	handler := NewSubscriptionHandler(new(mocks.SubscriptionRepositoryMock))
	router := setupSubscriptionRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/subscriptions", bytes.NewBufferString(`{"status":"active"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpsertSubscriptionRepoFailure(t *testing.T) {
	subscriptionRepo := new(mocks.SubscriptionRepositoryMock)
	handler := NewSubscriptionHandler(subscriptionRepo)
	router := setupSubscriptionRouter(handler)

	subscriptionRepo.On("UpsertSubscription", mock.Anything, mock.Anything).
		Return(models.Subscription{}, errors.New("db down")).Once()

	body := bytes.NewBufferString(`{"subscription_type":"basic"}`)
	req := httptest.NewRequest(http.MethodPut, "/subscriptions", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
