// Package memory provides the two conversational stores the agent consumes:
// the hosted MemOS platform for long-term user memory and a Redis-backed
// short-term session history.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Memory scope and type constants, mirroring the MemOS API vocabulary.
const (
	ScopeUser    = "user"
	ScopeGeneral = "general"
	ScopeSession = "session"

	TypePlaintext = "plaintext"
)

// Memory is one stored memory entry returned by the MemOS platform.
type Memory struct {
	ID        string   `json:"memory_id"`
	UserID    string   `json:"user_id"`
	Content   string   `json:"content"`
	Type      string   `json:"memory_type"`
	Scope     string   `json:"scope"`
	Tags      []string `json:"tags"`
	Timestamp string   `json:"timestamp"`
}

// MemOSClient talks to the hosted MemOS memory platform. Memory reasoning
// lives on the platform side; this client only persists and retrieves.
type MemOSClient struct {
	apiBase    string
	apiKey     string
	retention  time.Duration
	httpClient *http.Client
}

// NewMemOSClient creates a configured client. retentionDays bounds the TTL
// sent with every saved memory.
func NewMemOSClient(apiBase, apiKey string, retentionDays int) *MemOSClient {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &MemOSClient{
		apiBase:    strings.TrimRight(apiBase, "/"),
		apiKey:     apiKey,
		retention:  time.Duration(retentionDays) * 24 * time.Hour,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SaveMemory persists one memory for a user. Tags and scope drive retrieval
// on the platform side.
func (c *MemOSClient) SaveMemory(ctx context.Context, userID, content, scope string, tags []string) (string, error) {
	if scope == "" {
		scope = ScopeUser
	}
	body := map[string]any{
		"user_id":     userID,
		"content":     content,
		"memory_type": TypePlaintext,
		"scope":       scope,
		"tags":        tags,
		"timestamp":   time.Now().Format(time.RFC3339),
		"ttl":         int(c.retention.Seconds()),
	}

	var parsed struct {
		MemoryID string `json:"memory_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/memories", body, nil, &parsed); err != nil {
		return "", fmt.Errorf("saving memory: %w", err)
	}
	return parsed.MemoryID, nil
}

// SearchMemories retrieves up to limit memories relevant to the query.
func (c *MemOSClient) SearchMemories(ctx context.Context, userID, query string, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("limit", strconv.Itoa(limit))
	if query != "" {
		params.Set("query", query)
	}

	var parsed struct {
		Memories []Memory `json:"memories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/memories/search", nil, params, &parsed); err != nil {
		return nil, fmt.Errorf("searching memories: %w", err)
	}
	return parsed.Memories, nil
}

// DeleteMemory removes one memory by id.
func (c *MemOSClient) DeleteMemory(ctx context.Context, memoryID string) error {
	path := "/api/v1/memories/" + url.PathEscape(memoryID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting memory %s: %w", memoryID, err)
	}
	return nil
}

// do issues one authenticated request and decodes the JSON response into
// out when out is non-nil.
func (c *MemOSClient) do(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	endpoint := c.apiBase + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("memos API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
