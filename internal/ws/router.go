package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"chat-backend/internal/broker"
	"chat-backend/internal/models"
	"chat-backend/internal/observability"
	"chat-backend/internal/repositories"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Router multiplexes websocket connections onto room subscriptions and fans
// events out through the broker. Per connection the lifecycle is
// connected -> joined rooms -> disconnected; a connection may join any number
// of rooms.
type Router struct {
	hub           *Hub
	broker        broker.Broker
	messageRepo   repositories.MessageRepository
	subscriptions repositories.SubscriptionRepository
	validate      *validator.Validate
}

// NewRouter wires the router into the hub and subscribes it to the broker, so
// events published by any instance reach this instance's local connections.
func NewRouter(hub *Hub, eventBroker broker.Broker, messageRepo repositories.MessageRepository, subscriptions repositories.SubscriptionRepository) *Router {
	r := &Router{
		hub:           hub,
		broker:        eventBroker,
		messageRepo:   messageRepo,
		subscriptions: subscriptions,
		validate:      validator.New(),
	}
	eventBroker.Subscribe(r.deliver)
	return r
}

// deliver pushes a consumed broker event to the local room group.
func (r *Router) deliver(event broker.Event) {
	payload, err := json.Marshal(models.Envelope{Event: event.Name, Data: event.Data})
	if err != nil {
		return
	}
	r.hub.Broadcast(event.RoomID, payload)
}

// Handle upgrades the connection and runs its read loop.
func (r *Router) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("chat-backend/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetHeader("X-User-Id")
	if userID == "" {
		userID = c.Query("userId")
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := NewClient(conn, info)

	observability.IncWSActive()
	log.Info().Str("conn_id", info.ConnID).Str("user_id", info.UserID).Msg("websocket connected")

	go r.readLoop(client, conn)
}

func (r *Router) readLoop(client *Client, conn *websocket.Conn) {
	defer func() {
		r.hub.LeaveAll(client)
		observability.DecWSActive()
		log.Info().
			Str("conn_id", client.Info.ConnID).
			Dur("duration", time.Since(client.Info.ConnectedAt)).
			Msg("websocket disconnected")
		client.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("conn_id", client.Info.ConnID).Msg("websocket read failed")
			}
			return
		}

		var envelope models.Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			r.sendError(client, "invalid event envelope")
			continue
		}
		r.dispatch(context.Background(), client, envelope)
	}
}

// dispatch handles one inbound event. Validation failures short-circuit with
// an error reply to the origin connection only: no persistence, no broadcast.
func (r *Router) dispatch(ctx context.Context, client *Client, envelope models.Envelope) {
	observability.IncWSEvent(envelope.Event)

	switch envelope.Event {
	case models.EventUserConnected:
		var req models.UserConnectionRequest
		if !r.decode(client, envelope.Data, &req) {
			return
		}
		r.hub.Join(req.RoomID, client)
		r.publish(ctx, client, req.RoomID, models.EventUserJoinedRoom, models.RoomPayload{RoomID: req.RoomID})

	case models.EventUserDisconnected:
		var req models.UserConnectionRequest
		if !r.decode(client, envelope.Data, &req) {
			return
		}
		r.hub.Leave(req.RoomID, client)
		r.publish(ctx, client, req.RoomID, models.EventUserLeftRoom, models.RoomPayload{RoomID: req.RoomID})

	case models.EventSendMessage:
		var req models.SendMessageRequest
		if !r.decode(client, envelope.Data, &req) {
			return
		}
		msg, err := r.messageRepo.CreateMessage(ctx, models.Message{
			RoomID:      req.RoomID,
			SenderID:    req.SenderID,
			ReceiverIDs: req.ReceiverIDs,
			Content:     req.Content,
		})
		if err != nil {
			log.Error().Err(err).Str("room_id", req.RoomID).Msg("store message failed")
			r.sendError(client, "failed to store message")
			return
		}
		if r.subscriptions != nil {
			if err := r.subscriptions.IncrementMessageCount(ctx, req.SenderID); err != nil {
				log.Warn().Err(err).Str("user_id", req.SenderID).Msg("message count update failed")
			}
		}
		r.publish(ctx, client, req.RoomID, models.EventMessageReceived, models.MessageReceivedPayload{
			MessageID: msg.ID,
			Content:   msg.Content,
			SenderID:  msg.SenderID,
			RoomID:    msg.RoomID,
			CreatedAt: msg.CreatedAt,
		})

	case models.EventDeleteMessage:
		var req models.DeleteMessageRequest
		if !r.decode(client, envelope.Data, &req) {
			return
		}
		if err := r.messageRepo.DeleteMessage(ctx, req.MessageID); err != nil {
			log.Error().Err(err).Str("message_id", req.MessageID).Msg("delete message failed")
			r.sendError(client, "failed to delete message")
			return
		}
		// Broadcast goes out whether or not the id existed.
		r.publish(ctx, client, req.RoomID, models.EventMessageDeleted, models.MessageDeletedPayload{
			MessageID: req.MessageID,
			RoomID:    req.RoomID,
		})

	default:
		r.sendError(client, fmt.Sprintf("unknown event %q", envelope.Event))
	}
}

// decode unmarshals and shape-validates an inbound payload, replying with the
// first constraint violation on failure.
func (r *Router) decode(client *Client, data json.RawMessage, out any) bool {
	if len(data) == 0 {
		r.sendError(client, "missing event data")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		r.sendError(client, "malformed event data")
		return false
	}
	if err := r.validate.Struct(out); err != nil {
		r.sendError(client, firstViolation(err))
		return false
	}
	return true
}

func (r *Router) publish(ctx context.Context, origin *Client, roomID, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.sendError(origin, "failed to encode event")
		return
	}
	if err := r.broker.PublishRoomEvent(ctx, broker.Event{RoomID: roomID, Name: name, Data: data}); err != nil {
		observability.IncBrokerPublishError()
		r.sendError(origin, "failed to broadcast event")
	}
}

func (r *Router) sendError(client *Client, message string) {
	observability.IncWSEvent(models.EventError)
	data, _ := json.Marshal(models.ErrorPayload{Message: message})
	payload, _ := json.Marshal(models.Envelope{Event: models.EventError, Data: data})
	if err := client.Send(payload); err != nil {
		log.Warn().Err(err).Str("conn_id", client.Info.ConnID).Msg("error reply write failed")
	}
}

// firstViolation reduces a validation error to its first field-level message.
func firstViolation(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Sprintf("%s is required", fieldErrs[0].Field())
	}
	return err.Error()
}
