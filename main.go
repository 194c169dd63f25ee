package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger/internal/auth"
	"messenger/internal/config"
	"messenger/internal/db"
	"messenger/internal/handlers"
	"messenger/internal/middleware"
	"messenger/internal/observability"
	"messenger/internal/rabbitmq"
	"messenger/internal/repositories"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	userRepo := repositories.NewUserRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	authHandler := handlers.NewAuthHandler(userRepo, jwtManager)
	userHandler := handlers.NewUserHandler(userRepo)
	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, userRepo, publisher)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware("messenger-api"))

	router.GET("/healthz", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	authMiddleware := middleware.AuthMiddleware(jwtManager)

	router.GET("/auth/me", authMiddleware, authHandler.Me)
	router.POST("/auth/logout", authMiddleware, authHandler.Logout)

	router.GET("/users/:user_id", authMiddleware, userHandler.GetUser)
	router.PUT("/users/:user_id", authMiddleware, userHandler.UpdateProfile)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.GET("/chats/:chat_id/messages", authMiddleware, chatHandler.GetChatMessages)
	router.POST("/messages", authMiddleware, chatHandler.PostMessage)
	router.PUT("/messages/:message_id/read", authMiddleware, chatHandler.MarkMessageRead)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
