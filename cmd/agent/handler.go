package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tymem/mem-agent/internal/llm"
	"github.com/tymem/mem-agent/internal/memory"
	"github.com/tymem/mem-agent/internal/router"
	cacheversion "github.com/tymem/mem-agent/internal/version"
)

// ChatRequest is the public payload of POST /api/v1/chat.
type ChatRequest struct {
	UserID     string            `json:"user_id" binding:"required"`
	SessionID  string            `json:"session_id" binding:"required"`
	Message    string            `json:"message" binding:"required"`
	IntentTags []string          `json:"intent_tags,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// ChatResponse is the public payload returned for one chat turn.
type ChatResponse struct {
	Content     string  `json:"content"`
	Route       string  `json:"route"`
	Service     string  `json:"service,omitempty"`
	ErrorKind   string  `json:"error_kind,omitempty"`
	Data        any     `json:"data,omitempty"`
	LatencyMS   int64   `json:"latency_ms"`
	CacheStatus string  `json:"cache_status,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// ChatHandler owns the full per-turn flow: context assembly, intent
// dispatch, conversational fallback, and memory persistence.
type ChatHandler struct {
	router    *router.Router
	registry  *router.Registry
	recorder  *router.RedisRecorder
	memos     *memory.MemOSClient
	history   *memory.History
	llmClient llm.Client
	config    *AppConfig
	rdb       *redis.Client
}

func NewChatHandler(rt *router.Router, registry *router.Registry, recorder *router.RedisRecorder, memos *memory.MemOSClient, history *memory.History, llmClient llm.Client, config *AppConfig, rdb *redis.Client) *ChatHandler {
	return &ChatHandler{
		router:    rt,
		registry:  registry,
		recorder:  recorder,
		memos:     memos,
		history:   history,
		llmClient: llmClient,
		config:    config,
		rdb:       rdb,
	}
}

// HandleChat processes one conversational turn.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	log.Printf("--- New Turn (User: %s, Session: %s, Message: '%.30s') ---", req.UserID, req.SessionID, req.Message)

	turns, err := h.history.Recent(c.Request.Context(), req.SessionID)
	if err != nil {
		log.Printf("WARNING: Could not load session history: %v", err)
	}

	request := router.NewRequest(req.Message, req.UserID, req.SessionID,
		router.WithIntentTags(req.IntentTags),
		router.WithContext(turns),
		router.WithArgs(req.Params),
	)

	result := h.router.Dispatch(c.Request.Context(), request)

	resp := ChatResponse{Route: string(result.Outcome), Service: result.Service, Score: result.Score}
	switch {
	case result.Handled():
		resp.Content = result.Payload.Text
		resp.Data = result.Payload.Data

	case result.Failed() && h.config.FallbackOnError:
		// Policy decision made here, outside the router: a failed tool may
		// still get a conversational answer instead of a bare error.
		log.Printf("⚠️ Service %s failed (%s); re-routing to conversational path.", result.Service, result.Kind)
		resp.ErrorKind = string(result.Kind)
		content, cacheStatus, genErr := h.generateFallback(c.Request.Context(), request)
		if genErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": genErr.Error()})
			return
		}
		resp.Content = content
		resp.CacheStatus = cacheStatus

	case result.Failed():
		resp.ErrorKind = string(result.Kind)
		resp.Content = degradedMessage(result)

	default: // fallback
		content, cacheStatus, genErr := h.generateFallback(c.Request.Context(), request)
		if genErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": genErr.Error()})
			return
		}
		resp.Content = content
		resp.CacheStatus = cacheStatus
	}

	h.persistTurn(req, resp.Content)

	resp.LatencyMS = time.Since(startTime).Milliseconds()
	c.JSON(http.StatusOK, resp)
}

// generateFallback answers through the conversational model, consulting
// the response cache, long-term memories, and the session history.
func (h *ChatHandler) generateFallback(ctx context.Context, request *router.Request) (content, cacheStatus string, err error) {
	cacheKey := cacheversion.GenerateVersionedCacheKey("chatcache", request.UserID+"|"+request.Utterance)
	if h.config.CacheFallback {
		if cached, cacheErr := h.rdb.Get(ctx, cacheKey).Result(); cacheErr == nil {
			log.Println("✅ Fallback cache HIT")
			return cached, "HIT", nil
		}
	}

	messages := h.assembleMessages(ctx, request)
	result, err := h.llmClient.Generate(ctx, messages, &llm.GenerationConfig{Model: h.config.LLMModel})
	if err != nil {
		return "", "", fmt.Errorf("conversational generation failed: %w", err)
	}

	if h.config.CacheFallback {
		if cacheErr := h.rdb.Set(ctx, cacheKey, result.Content, h.config.SessionTTL).Err(); cacheErr != nil {
			log.Printf("WARNING: Failed to cache fallback response: %v", cacheErr)
		}
	}
	return result.Content, "MISS", nil
}

// assembleMessages builds the completion history: retrieved long-term
// memories as a system preamble, then the session turns, then the current
// utterance.
func (h *ChatHandler) assembleMessages(ctx context.Context, request *router.Request) []llm.Message {
	var messages []llm.Message

	memories, err := h.memos.SearchMemories(ctx, request.UserID, request.Utterance, 5)
	if err != nil {
		log.Printf("WARNING: Memory retrieval failed: %v", err)
	}
	if len(memories) > 0 {
		var sb strings.Builder
		sb.WriteString("Relevant things you remember about this user:\n")
		for _, m := range memories {
			sb.WriteString("- ")
			sb.WriteString(m.Content)
			sb.WriteString("\n")
		}
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: sb.String()})
	}

	for _, turn := range request.Context {
		messages = append(messages, llm.Message{Role: llm.Role(turn.Role), Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: request.Utterance})
	return messages
}

// persistTurn writes the exchange to the session history and, in the
// background, to long-term memory. Persistence failures degrade silently;
// the user already has their answer.
func (h *ChatHandler) persistTurn(req ChatRequest, answer string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.history.Append(ctx, req.SessionID, router.Turn{Role: "user", Content: req.Message}); err != nil {
		log.Printf("WARNING: Failed to append user turn: %v", err)
	}
	if err := h.history.Append(ctx, req.SessionID, router.Turn{Role: "assistant", Content: answer}); err != nil {
		log.Printf("WARNING: Failed to append assistant turn: %v", err)
	}

	go func() {
		bgCtx, bgCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer bgCancel()
		content := fmt.Sprintf("User said: %s\nAssistant replied: %s", req.Message, answer)
		if _, err := h.memos.SaveMemory(bgCtx, req.UserID, content, memory.ScopeSession, []string{"conversation"}); err != nil {
			log.Printf("WARNING: Failed to save memory: %v", err)
		}
	}()
}

// HandleServices reports the registry snapshot and per-service dispatch
// stats. Read-only: enable/disable lives in configuration, not here.
func (h *ChatHandler) HandleServices(c *gin.Context) {
	type serviceView struct {
		Name         string              `json:"name"`
		Description  string              `json:"description"`
		Capabilities []string            `json:"capabilities"`
		Keywords     []string            `json:"keywords"`
		Enabled      bool                `json:"enabled"`
		Health       string              `json:"health"`
		Stats        router.ServiceStats `json:"stats"`
	}

	views := make([]serviceView, 0, h.registry.Len())
	for _, svc := range h.registry.All() {
		d := svc.Descriptor()
		stats, err := h.recorder.Stats(c.Request.Context(), d.Name)
		if err != nil {
			log.Printf("WARNING: Could not read stats for %s: %v", d.Name, err)
		}
		views = append(views, serviceView{
			Name:         d.Name,
			Description:  d.Description,
			Capabilities: d.Capabilities,
			Keywords:     d.Keywords,
			Enabled:      d.Enabled,
			Health:       stats.Health(),
			Stats:        stats,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"accept_threshold": h.router.Threshold(),
		"services":         views,
	})
}

// degradedMessage renders a graceful user-facing message for a failed tool.
func degradedMessage(result router.Result) string {
	switch result.Kind {
	case router.KindInvalidArguments:
		return fmt.Sprintf("我没有足够的信息来完成这个请求（%s）。请补充细节后再试。", result.Service)
	case router.KindTimeout:
		return fmt.Sprintf("%s 服务响应超时，请稍后再试。", result.Service)
	default:
		return fmt.Sprintf("%s 服务暂时不可用，请稍后再试。", result.Service)
	}
}
