package main

import (
	"context"
	"log"
	"time"

	"todo-backend/infrastructure/config"
	"todo-backend/infrastructure/di"
	handlers "todo-backend/interfaces/lambda"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var (
	// container holds the dependency injection container
	container *di.Container

	// handler serves every invocation of this execution environment
	handler *handlers.Handler
)

// init runs during cold start
func init() {
	coldStartTime := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler = handlers.NewHandler(container.Service, container.Metrics, container.Logger)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("table", cfg.TodosTable),
		zap.String("bucket", cfg.AttachmentBucket),
		zap.Bool("offline", cfg.IsOffline),
	)
}

func main() {
	defer container.Shutdown()
	lambda.Start(handler.Handle)
}
