package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sakudo-app/sakudo/broker"
	"sakudo-app/sakudo/config"
	"sakudo-app/sakudo/database"
	"sakudo-app/sakudo/middleware"
	"sakudo-app/sakudo/routes"
	"sakudo-app/sakudo/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// The hub always serves local websocket clients.
	webSocketService := services.NewWebSocketService()
	webSocketService.Start()
	defer webSocketService.Stop()

	publisher, consumer := setupEventBus(cfg, webSocketService)
	defer publisher.Close()
	if consumer != nil {
		defer consumer.Close()
	}

	authService := services.NewAuthService(db, publisher, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.BcryptCost)
	userService := services.NewUserService(db)
	taskService := services.NewTaskService(db, publisher)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	routes.RegisterHealthRoutes(router, db)
	routes.RegisterAuthRoutes(router, authService)
	routes.RegisterWebSocketRoutes(router, authService, webSocketService)

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.AuthMiddleware(authService))
	routes.RegisterUserRoutes(apiGroup, userService)
	routes.RegisterTaskRoutes(apiGroup, taskService)

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		log.Printf("API server is running on port %s", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

// setupEventBus picks where change events go. Without NATS the hub gets them
// directly. With NATS every event goes through the bus and the hub listens
// on it, so several API processes can share one change feed.
func setupEventBus(cfg config.Config, hub services.WebSocketServiceInterface) (broker.Publisher, *broker.Consumer) {
	if cfg.NatsURL == "" {
		log.Println("NATS_URL not set, delivering events to local websocket clients only")
		return hub, nil
	}

	natsPublisher, err := broker.NewNatsPublisher(cfg.NatsURL)
	if err != nil {
		log.Printf("Warning: %v", err)
		log.Println("The application will continue, events reach local websocket clients only")
		return hub, nil
	}

	consumer, err := broker.StartConsumer(cfg.NatsURL, broker.Subjects, hub.HandleBusMessage)
	if err != nil {
		log.Printf("Warning: failed to start NATS consumer: %v", err)
		return broker.MultiPublisher{natsPublisher, hub}, nil
	}

	return natsPublisher, consumer
}
