package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tymem/mem-agent/internal/router"
)

// History stores recent conversation turns per session in Redis so the
// fallback model sees the running exchange. Entries are capped and expire
// with the session.
type History struct {
	rdb      *redis.Client
	maxTurns int64
	ttl      time.Duration
}

// NewHistory creates a history store. maxTurns bounds the retained window;
// ttl is refreshed on every append.
func NewHistory(rdb *redis.Client, maxTurns int, ttl time.Duration) *History {
	if maxTurns <= 0 {
		maxTurns = 50
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &History{rdb: rdb, maxTurns: int64(maxTurns), ttl: ttl}
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("history:%s", sessionID)
}

// Append records one turn at the end of the session's history and trims
// the window to the configured size.
func (h *History) Append(ctx context.Context, sessionID string, turn router.Turn) error {
	raw, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encoding turn: %w", err)
	}
	key := historyKey(sessionID)
	pipe := h.rdb.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.LTrim(ctx, key, -h.maxTurns, -1)
	pipe.Expire(ctx, key, h.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending history for %s: %w", sessionID, err)
	}
	return nil
}

// Recent returns the session's retained turns, oldest first.
func (h *History) Recent(ctx context.Context, sessionID string) ([]router.Turn, error) {
	raws, err := h.rdb.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", sessionID, err)
	}
	turns := make([]router.Turn, 0, len(raws))
	for _, raw := range raws {
		var turn router.Turn
		if err := json.Unmarshal([]byte(raw), &turn); err != nil {
			continue // skip a corrupt entry rather than lose the session
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear drops the session's history.
func (h *History) Clear(ctx context.Context, sessionID string) error {
	return h.rdb.Del(ctx, historyKey(sessionID)).Err()
}
