package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"

	"support-console/internal/adapter/api"
	"support-console/internal/adapter/audit"
	"support-console/internal/adapter/client"
	"support-console/internal/adapter/store"
	"support-console/internal/domain/repository"
	"support-console/internal/usecase"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		log.Println("Warning: .env.dev file not found, using system environment variables")
	}
	ctx := context.Background()

	backend := os.Getenv("COMPLETION_BACKEND") // "groq" (default) or "gemini"
	groqBaseURL := os.Getenv("GROQ_BASE_URL")
	serverKey := os.Getenv("GROQ_API_KEY")
	redisAddr := os.Getenv("REDIS_ADDR")
	qdrantHost := os.Getenv("QDRANT_HOST")
	qdrantPort, _ := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	location := os.Getenv("GOOGLE_CLOUD_LOCATION")
	tokenLimit, _ := strconv.Atoi(os.Getenv("CUSTOMER_TOKEN_LIMIT"))

	// Client factory: a request-supplied key wins over the server key, so
	// agent consoles can bring their own credential per turn.
	var clients usecase.ClientFactory
	var genaiClient *genai.Client

	if backend == "gemini" {
		var err error
		genaiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			Project:  projectID,
			Location: location,
			Backend:  genai.BackendVertexAI,
		})
		if err != nil {
			log.Fatalf("failed to init genai client: %v", err)
		}
		gemini := client.NewGeminiClientFromClient(genaiClient)
		clients = func(apiKey, model string) repository.CompletionClient {
			return gemini
		}
	} else {
		clients = func(apiKey, model string) repository.CompletionClient {
			key := apiKey
			if key == "" {
				key = serverKey
			}
			if key == "" {
				return nil
			}
			return client.NewGroqClient(groqBaseURL, key)
		}
	}

	// Optional: Redis-backed per-customer token budget.
	var limiter repository.UsageLimiter
	if redisAddr != "" && tokenLimit > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		limiter = store.NewRedisLimiter(rdb, tokenLimit)
	}

	// Optional: Qdrant semantic cache for narratives. Requires the genai
	// embedder, so it only activates on the gemini backend.
	var embedder repository.Embedder
	var cache repository.ResponseCache
	var judge repository.MatchJudge
	if qdrantHost != "" && genaiClient != nil {
		qClient, err := qdrant.NewClient(&qdrant.Config{
			Host: qdrantHost,
			Port: qdrantPort,
		})
		if err != nil {
			log.Fatalf("failed to connect to qdrant: %v", err)
		}
		qdrantCache := store.NewQdrantCache(qClient, os.Getenv("QDRANT_COLLECTION"))
		if err := qdrantCache.InitCollection(ctx, 768); err != nil {
			log.Fatalf("failed to init qdrant collection: %v", err)
		}
		cache = qdrantCache
		embedder = client.NewEmbedderFromClient(genaiClient, "text-embedding-004")
		judge = client.NewIntentJudge(genaiClient, "gemini-2.5-flash")
	}

	var auditLog *audit.Logger
	if path := os.Getenv("AUDIT_LOG"); path != "" {
		var err error
		auditLog, err = audit.NewLogger(path, uuid.NewString())
		if err != nil {
			log.Fatalf("failed to open audit log: %v", err)
		}
		defer auditLog.Close()
	}

	orchestrator := usecase.NewOrchestrator(clients, limiter, embedder, cache, judge)

	app := fiber.New(fiber.Config{
		AppName: "Support Console Analysis Service",
	})
	handler := api.NewAnalyzeHandler(orchestrator, auditLog)
	api.SetupRouter(app, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Support console analysis service running on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
