package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chat-backend/internal/broker"
	"chat-backend/internal/config"
	"chat-backend/internal/db"
	"chat-backend/internal/handlers"
	"chat-backend/internal/logging"
	"chat-backend/internal/middleware"
	"chat-backend/internal/observability"
	"chat-backend/internal/repositories"
	"chat-backend/internal/telemetry"
	"chat-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Env)

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer shutdownTracing(ctx)

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}

	eventBroker := broker.NewBroker(cfg.AMQPURL, cfg.AMQPExchange)
	defer eventBroker.Close()

	var auditPublisher telemetry.Publisher
	if p, ok := eventBroker.(telemetry.Publisher); ok {
		auditPublisher = p
	}
	audit := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRoutingKey, cfg.ServiceName, cfg.Env)

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	subscriptionRepo := repositories.NewSubscriptionRepo(database)

	hub := ws.NewHub()
	sessionRouter := ws.NewRouter(hub, eventBroker, messageRepo, subscriptionRepo)

	roomHandler := handlers.NewRoomHandler(roomRepo, messageRepo, audit)
	messageHandler := handlers.NewMessageHandler(messageRepo)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())

	identity := middleware.Identity()

	router.POST("/rooms", identity, roomHandler.CreateRoom)
	router.GET("/rooms", identity, roomHandler.ListRooms)
	router.GET("/rooms/:room_id", identity, roomHandler.GetRoom)
	router.PUT("/rooms/:room_id", identity, roomHandler.UpdateRoom)
	router.DELETE("/rooms/:room_id", identity, roomHandler.DeleteRoom)
	router.PUT("/rooms/:room_id/members", identity, roomHandler.AddMembers)
	router.DELETE("/rooms/:room_id/members", identity, roomHandler.RemoveMembers)
	router.DELETE("/rooms/:room_id/me", identity, roomHandler.HideRoom)
	router.GET("/rooms/:room_id/messages", identity, messageHandler.GetRoomMessages)
	router.GET("/conversations", identity, messageHandler.ListConversations)
	router.PUT("/messages/:message_id", identity, messageHandler.EditMessage)
	router.PUT("/subscriptions", identity, subscriptionHandler.UpsertSubscription)

	router.GET("/ws", sessionRouter.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("port", cfg.Port).Msg("chat backend listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
