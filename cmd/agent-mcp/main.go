// agent-mcp exposes the agent's tool services (ride hailing, weather, time)
// as a Model Context Protocol server over stdio, so MCP clients can call
// them without going through the chat gateway.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"

	"github.com/tymem/mem-agent/internal/mcpserver"
	"github.com/tymem/mem-agent/internal/memory"
	"github.com/tymem/mem-agent/internal/router"
	"github.com/tymem/mem-agent/internal/service"
)

var version = "dev"

func main() {
	// MCP stdio transport owns stdout; everything else goes to stderr.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	registry := buildRegistry()
	s := mcpserver.New("mem-agent", version, registry)

	log.Printf("🚀 mem-agent MCP server starting (%d tools)", registry.Len())
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildRegistry registers the tool services from the environment. All
// services are exposed over MCP; the enabled flag only gates chat routing.
func buildRegistry() *router.Registry {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})

	registry := router.NewRegistry()
	registry.Register(service.NewRideService(os.Getenv("DIDI_API_KEY"), true))
	registry.Register(service.NewWeatherService(os.Getenv("AMAP_TOKEN"), os.Getenv("DEFAULT_CITY"), true))
	registry.Register(service.NewClockService(os.Getenv("DEFAULT_TIMEZONE"), true))
	registry.Register(service.NewTodoService(memory.NewTodoStore(rdb), true))
	registry.Seal()
	return registry
}
