package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tymem/mem-agent/internal/llm"
	"github.com/tymem/mem-agent/internal/memory"
	"github.com/tymem/mem-agent/internal/router"
	"github.com/tymem/mem-agent/internal/service"
)

// main is the entry point for the chat agent. Its role is the composition
// root: load configuration, initialize every collaborator, inject
// dependencies, and run the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting Mem Agent | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	// 2. INITIALIZE SERVICES
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ FATAL: Could not connect to Redis: %v", err)
	}

	registry := buildRegistry(cfg, rdb)
	intentRouter := router.New(registry, cfg.RouterConfig)
	recorder := router.NewRedisRecorder(rdb)
	intentRouter.SetRecorder(recorder)

	memosClient := memory.NewMemOSClient(cfg.MemOSAPIBase, cfg.MemOSAPIKey, cfg.MemoryRetentionDays)
	history := memory.NewHistory(rdb, cfg.MaxHistoryTurns, cfg.SessionTTL)

	llmClient, err := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey)
	if err != nil {
		log.Fatalf("❌ FATAL: Could not create LLM client: %v", err)
	}

	chatHandler := NewChatHandler(intentRouter, registry, recorder, memosClient, history, llmClient, cfg, rdb)
	log.Println("✅ All services initialized.")

	// 3. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/chat", chatHandler.HandleChat)
		v1.GET("/services", chatHandler.HandleServices)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// buildRegistry registers every tool service with its configured
// enable/disable toggle and seals the registry before any traffic.
func buildRegistry(cfg *AppConfig, rdb *redis.Client) *router.Registry {
	registry := router.NewRegistry()

	registry.Register(service.NewRideService(cfg.DidiAPIKey, cfg.ServiceEnabled("didi_ride")))
	registry.Register(service.NewWeatherService(cfg.AmapToken, cfg.DefaultCity, cfg.ServiceEnabled("amap_weather")))
	registry.Register(service.NewClockService(cfg.DefaultTimezone, cfg.ServiceEnabled("time_query")))
	registry.Register(service.NewTodoService(memory.NewTodoStore(rdb), cfg.ServiceEnabled("todo_list")))

	registry.Seal()
	log.Printf("✅ Service registry sealed with %d tool services.", registry.Len())
	return registry
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Agent is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server shutdown failed:", err)
	}

	log.Println("👋 Server exited gracefully.")
}
