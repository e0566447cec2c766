package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"

	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

// SubscriptionHandler stores per-user subscription rows. Billing itself is
// out of scope here.
type SubscriptionHandler struct {
	subscriptionRepo repositories.SubscriptionRepository
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(subscriptionRepo repositories.SubscriptionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionRepo: subscriptionRepo}
}

// UpsertSubscription handles PUT /subscriptions.
func (h *SubscriptionHandler) UpsertSubscription(c *gin.Context) {
	var req struct {
		SubscriptionType string         `json:"subscription_type" binding:"required"`
		StartDate        *time.Time     `json:"start_date"`
		EndDate          *time.Time     `json:"end_date"`
		Status           string         `json:"status"`
		PaymentInfo      types.JSONText `json:"payment_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.subscriptionRepo.UpsertSubscription(c.Request.Context(), models.Subscription{
		UserID:           userIDFromContext(c),
		SubscriptionType: req.SubscriptionType,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Status:           req.Status,
		PaymentInfo:      req.PaymentInfo,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update subscription"})
		return
	}

	c.JSON(http.StatusOK, sub)
}
