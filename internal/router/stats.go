package router

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ServiceStats tracks dispatch counters for one tool service.
type ServiceStats struct {
	Service        string    `json:"service"`
	TotalRequests  int64     `json:"total_requests"`
	Successes      int64     `json:"successes"`
	Failures       int64     `json:"failures"`
	TotalLatencyMS int64     `json:"total_latency_ms"`
	AvgLatencyMS   int64     `json:"avg_latency_ms"`
	LastOutcome    string    `json:"last_outcome,omitempty"`
	LastUsed       time.Time `json:"last_used"`
}

// ErrorRate returns the observed failure ratio.
func (s ServiceStats) ErrorRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.TotalRequests)
}

// Health derives a coarse liveness signal from the most recent dispatch:
// "ok" after a success, "degraded" after a failure, "unknown" when the
// service has never been dispatched.
func (s ServiceStats) Health() string {
	switch s.LastOutcome {
	case "success":
		return "ok"
	case "failure":
		return "degraded"
	default:
		return "unknown"
	}
}

// RedisRecorder persists per-service dispatch stats in Redis hashes so that
// counters survive restarts and are shared across replicas.
type RedisRecorder struct {
	rdb *redis.Client
}

var _ Recorder = (*RedisRecorder)(nil)

// NewRedisRecorder creates a recorder over an existing Redis client.
func NewRedisRecorder(rdb *redis.Client) *RedisRecorder {
	return &RedisRecorder{rdb: rdb}
}

func statsKey(service string) string {
	return fmt.Sprintf("svcstats:%s", service)
}

// RecordDispatch updates the service's counters. All writes are monotonic
// increments in one transaction, so concurrent dispatches and multiple
// replicas never lose samples; the average latency is derived at read time.
// Errors are logged and swallowed: stats must never fail a dispatch.
func (rec *RedisRecorder) RecordDispatch(ctx context.Context, service string, ok bool, latency time.Duration) {
	key := statsKey(service)
	outcome := "failure"
	successField := "failures"
	if ok {
		outcome = "success"
		successField = "successes"
	}

	pipe := rec.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, "total_requests", 1)
	pipe.HIncrBy(ctx, key, successField, 1)
	pipe.HIncrBy(ctx, key, "latency_ms_total", latency.Milliseconds())
	pipe.HSet(ctx, key, map[string]any{
		"last_outcome": outcome,
		"last_used":    time.Now().Format(time.RFC3339Nano),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("WARNING: stats update failed for %s: %v", service, err)
	}
}

// Stats reads the persisted counters for one service, returning zeroed
// stats when nothing has been recorded yet.
func (rec *RedisRecorder) Stats(ctx context.Context, service string) (ServiceStats, error) {
	data, err := rec.rdb.HGetAll(ctx, statsKey(service)).Result()
	if err != nil {
		return ServiceStats{}, err
	}
	stats := ServiceStats{Service: service}
	if len(data) == 0 {
		return stats, nil
	}
	stats.TotalRequests, _ = strconv.ParseInt(data["total_requests"], 10, 64)
	stats.Successes, _ = strconv.ParseInt(data["successes"], 10, 64)
	stats.Failures, _ = strconv.ParseInt(data["failures"], 10, 64)
	stats.TotalLatencyMS, _ = strconv.ParseInt(data["latency_ms_total"], 10, 64)
	if stats.TotalRequests > 0 {
		stats.AvgLatencyMS = stats.TotalLatencyMS / stats.TotalRequests
	}
	stats.LastOutcome = data["last_outcome"]
	stats.LastUsed, _ = time.Parse(time.RFC3339Nano, data["last_used"])
	return stats, nil
}
