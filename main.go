package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"biasdetect/adapters/api"
	"biasdetect/internal/config"
	"biasdetect/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitWithDatabase(ctx); err != nil {
		appContainer.Logger.Error("Failed to initialize database: %v", err)
		return
	}

	gin.SetMode(appConfig.Server.GinMode)
	server := api.NewServer(appContainer.Audits, api.ServerConfig{
		MaxUploadMB: appConfig.Server.MaxUploadMB,
		Logger:      appContainer.Logger,
	})

	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		appContainer.Logger.Error("Server failed: %v", err)
	}
}
