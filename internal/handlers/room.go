package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"
	"github.com/samber/lo"

	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
	"chat-backend/internal/telemetry"
)

// RoomHandler manages room lifecycle and membership endpoints.
type RoomHandler struct {
	roomRepo    repositories.RoomRepository
	messageRepo repositories.MessageRepository
	audit       *telemetry.AuditEmitter
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(roomRepo repositories.RoomRepository, messageRepo repositories.MessageRepository, audit *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		audit:       audit,
	}
}

// CreateRoom handles POST /rooms.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := userIDFromContext(c)

	var req struct {
		RoomType        string         `json:"room_type" binding:"required,oneof=one_to_one group"`
		RoomTitle       string         `json:"room_title" binding:"required"`
		RoomDescription string         `json:"room_description" binding:"required"`
		Members         []string       `json:"members"`
		Metadata        types.JSONText `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomRepo.CreateRoom(c.Request.Context(), models.Room{
		CreatedBy:       userID,
		RoomType:        req.RoomType,
		RoomTitle:       req.RoomTitle,
		RoomDescription: req.RoomDescription,
		Members:         lo.Uniq(req.Members),
		Metadata:        req.Metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTooManyMembers):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repositories.ErrRoomExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.emitAudit(c, "ERROR", "room create failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		}
		return
	}

	h.emitAudit(c, "INFO", "room created")
	c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /rooms/:room_id. Only group rooms update; a
// one-to-one room misses the type filter and reports "room not updated".
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	roomID := c.Param("room_id")

	var patch models.RoomPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomRepo.UpdateRoom(c.Request.Context(), roomID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, repositories.ErrRoomNotUpdated):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update room"})
		}
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListRooms handles GET /rooms with pagination.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	page, ok := bindPagination(c)
	if !ok {
		return
	}

	result, err := h.roomRepo.ListRooms(c.Request.Context(), userIDFromContext(c), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRoom handles GET /rooms/:room_id.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomRepo.GetRoom(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// AddMembers handles PUT /rooms/:room_id/members. The repository filter
// rejects the whole batch when any proposed member is already present.
func (h *RoomHandler) AddMembers(c *gin.Context) {
	roomID := c.Param("room_id")

	var req struct {
		Members []string `json:"members" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomRepo.AddMembers(c.Request.Context(), roomID, lo.Uniq(req.Members))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, repositories.ErrMemberExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add members"})
		}
		return
	}

	h.emitAudit(c, "INFO", "room members added")
	c.JSON(http.StatusOK, room)
}

// RemoveMembers handles DELETE /rooms/:room_id/members. Removal is a set
// difference: absent targets are ignored.
func (h *RoomHandler) RemoveMembers(c *gin.Context) {
	roomID := c.Param("room_id")

	var req struct {
		Members []string `json:"members" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomRepo.RemoveMembers(c.Request.Context(), roomID, lo.Uniq(req.Members))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, repositories.ErrMemberMissing):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove members"})
		}
		return
	}

	h.emitAudit(c, "INFO", "room members removed")
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /rooms/:room_id: cascade-deletes the room's
// messages and the room itself. Reports success whether or not the room
// existed.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	if err := h.roomRepo.DeleteRoom(c.Request.Context(), c.Param("room_id")); err != nil {
		h.emitAudit(c, "ERROR", "room delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete room"})
		return
	}

	h.emitAudit(c, "INFO", "room deleted")
	c.JSON(http.StatusOK, gin.H{"message": "room deleted successfully"})
}

// HideRoom handles DELETE /rooms/:room_id/me: per-user soft delete of every
// message in the room. The messages stay put for other participants.
func (h *RoomHandler) HideRoom(c *gin.Context) {
	roomID := c.Param("room_id")
	userID := userIDFromContext(c)

	if err := h.messageRepo.HideRoomForUser(c.Request.Context(), roomID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hide room"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RoomHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
