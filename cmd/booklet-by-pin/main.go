package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"welcome-keys/handler"
	"welcome-keys/internal/repository"
	"welcome-keys/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	contentTable := mustEnv("CONTENT_TABLE")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	store, err := repository.New(awsdynamodb.NewFromConfig(cfg), contentTable)
	if err != nil {
		slog.Error("failed to create content store", "err", err)
		os.Exit(1)
	}

	resolver, err := usecase.NewResolveService(store)
	if err != nil {
		slog.Error("failed to create resolve service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewBookletHandler(resolver)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
