// Local development server exposing the same three routes as the deployed
// Lambdas, so the front end can run against localhost without AWS API
// Gateway in the loop.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"welcome-keys/handler"
	"welcome-keys/internal/bundlecache"
	"welcome-keys/internal/integrations/openai"
	"welcome-keys/internal/integrations/paramstore"
	"welcome-keys/internal/repository"
	"welcome-keys/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found, continuing with environment variables")
	}

	ctx := context.Background()

	contentTable := mustEnv("CONTENT_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

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

	// The booklet route sits behind the short-TTL intermediary cache; the
	// Wi-Fi and chat routes always read fresh.
	cachedResolver, err := bundlecache.New(resolver, bundlecache.DefaultTTL)
	if err != nil {
		slog.Error("failed to create bundle cache", "err", err)
		os.Exit(1)
	}

	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	openaiClient, err := openai.NewClient(ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}
	chatService, err := usecase.NewChatService(ssmClient, openaiClient, resolver, paramPrefix, 0)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	bookletHandler, err := handler.NewBookletHandler(cachedResolver)
	if err != nil {
		slog.Error("failed to create booklet handler", "err", err)
		os.Exit(1)
	}
	wifiHandler, err := handler.NewWifiHandler(resolver)
	if err != nil {
		slog.Error("failed to create wifi handler", "err", err)
		os.Exit(1)
	}
	chatHandler, err := handler.NewChatHandler(chatService)
	if err != nil {
		slog.Error("failed to create chat handler", "err", err)
		os.Exit(1)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: parseCorsOrigins(),
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Correlation-Id"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/booklet-by-pin/:code", proxy(bookletHandler.Handle))
	router.GET("/wifi-by-pin/:code", proxy(wifiHandler.Handle))
	router.POST("/chat-ask", proxy(chatHandler.Handle))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("devserver listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("devserver stopped")
}

// proxy adapts a Lambda-shaped handler to gin, so the exact same code path
// (headers, cache directives, error mapping) runs locally and deployed.
func proxy(handle func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_INPUT"})
			return
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k, v := range c.Request.Header {
			if len(v) > 0 {
				headers[k] = v[0]
			}
		}
		pathParams := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			pathParams[p.Key] = p.Value
		}

		res, err := handle(c.Request.Context(), events.APIGatewayProxyRequest{
			HTTPMethod:     c.Request.Method,
			Path:           c.Request.URL.Path,
			Headers:        headers,
			PathParameters: pathParams,
			Body:           string(body),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
			return
		}

		for k, v := range res.Headers {
			// The CORS middleware owns this one locally.
			if strings.EqualFold(k, "Access-Control-Allow-Origin") {
				continue
			}
			c.Header(k, v)
		}
		c.Data(res.StatusCode, "application/json", []byte(res.Body))
	}
}

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
