// Package llm provides the conversational completion client used when the
// intent router declares fallback. Providers exposing an OpenAI-compatible
// chat API (OpenAI, DashScope compatible mode) share one implementation.
package llm

import (
	"context"
	"time"
)

const defaultTimeout = 120 * time.Second

// Role represents the originator of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single message in a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationConfig controls one completion call.
type GenerationConfig struct {
	// Model names the served model, e.g. "qwen-max" or "gpt-4o".
	Model string
	// MaxTokens caps the response length; zero leaves the provider default.
	MaxTokens int
	// Temperature controls randomness. A pointer distinguishes 0.0 from unset.
	Temperature *float32
}

// Usage holds token accounting for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult is the complete output of one completion call.
type GenerationResult struct {
	Content string
	Usage   Usage
}

// Client is the interface the chat layer depends on for the conversational
// fallback path.
type Client interface {
	// Generate performs a blocking completion over the full message history.
	Generate(ctx context.Context, messages []Message, config *GenerationConfig) (*GenerationResult, error)
}
