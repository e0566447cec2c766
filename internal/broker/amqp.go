package broker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const roomRoutingPrefix = "room."

// AMQPBroker fans room events out through a shared topic exchange so that
// horizontally scaled instances agree on room group membership. Each instance
// binds its own exclusive queue to room.# and delivers consumed events to its
// local subscribers.
type AMQPBroker struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string

	mu       sync.RWMutex
	handlers []Handler
}

// NewBroker builds an AMQP-backed broker, or falls back to in-process
// delivery when AMQP is disabled or unreachable.
func NewBroker(amqpURL, exchange string) Broker {
	if amqpURL == "" {
		log.Info().Msg("amqp disabled, using local broker")
		return NewLocalBroker()
	}

	b, err := NewAMQPBroker(amqpURL, exchange)
	if err != nil {
		log.Warn().Err(err).Msg("amqp unavailable, using local broker")
		return NewLocalBroker()
	}
	log.Info().Str("exchange", exchange).Msg("amqp broker connected")
	return b
}

// NewAMQPBroker connects, declares the exchange and starts the consume loop.
func NewAMQPBroker(amqpURL, exchange string) (*AMQPBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if err := ch.QueueBind(queue.Name, roomRoutingPrefix+"#", exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	deliveries, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	b := &AMQPBroker{conn: conn, channel: ch, exchange: exchange}
	go b.consume(deliveries)
	return b, nil
}

// PublishRoomEvent publishes the event keyed by room id.
func (b *AMQPBroker) PublishRoomEvent(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = b.channel.PublishWithContext(ctx, b.exchange, roomRoutingPrefix+event.RoomID, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", event.RoomID).Msg("amqp publish failed")
	}
	return err
}

// Subscribe registers a handler for consumed room events.
func (b *AMQPBroker) Subscribe(handler Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
}

// Close tears down the channel and connection.
func (b *AMQPBroker) Close() error {
	if b.channel != nil {
		_ = b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

func (b *AMQPBroker) consume(deliveries <-chan amqp.Delivery) {
	for delivery := range deliveries {
		var event Event
		if err := json.Unmarshal(delivery.Body, &event); err != nil {
			log.Error().Err(err).Msg("amqp delivery decode failed")
			continue
		}

		b.mu.RLock()
		handlers := b.handlers
		b.mu.RUnlock()
		for _, h := range handlers {
			h(event)
		}
	}
}

// Publish sends an arbitrary JSON event with an explicit routing key. Audit
// envelopes use this path.
func (b *AMQPBroker) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.channel.PublishWithContext(ctx, b.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Publish on the local broker logs and drops: there is no consumer in-process.
func (b *LocalBroker) Publish(ctx context.Context, routingKey string, event any) error {
	log.Debug().Str("routing_key", routingKey).Msg("local broker publish (dropped)")
	return nil
}
