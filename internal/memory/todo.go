package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Todo item statuses.
const (
	TodoPending   = "pending"
	TodoCompleted = "completed"
	TodoCancelled = "cancelled"
)

// ErrTodoNotFound is returned when an id does not exist for the user.
var ErrTodoNotFound = errors.New("todo not found")

// TodoItem is one stored todo entry. Deadline and the bookkeeping
// timestamps are RFC 3339 strings.
type TodoItem struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status"`
	Priority    int    `json:"priority"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// TodoStore persists per-user todo items in Redis: one hash per user
// (field = item id, value = JSON) plus a per-user id counter. Todos are
// user data, not session data, so entries carry no TTL.
type TodoStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewTodoStore creates a store over an existing Redis client.
func NewTodoStore(rdb *redis.Client) *TodoStore {
	return &TodoStore{rdb: rdb, now: time.Now}
}

func todosKey(userID string) string {
	return fmt.Sprintf("todos:%s", userID)
}

func todoSeqKey(userID string) string {
	return fmt.Sprintf("todoseq:%s", userID)
}

// Create stores a new pending item and returns it with its assigned id.
func (s *TodoStore) Create(ctx context.Context, item TodoItem) (TodoItem, error) {
	id, err := s.rdb.Incr(ctx, todoSeqKey(item.UserID)).Result()
	if err != nil {
		return TodoItem{}, fmt.Errorf("allocating todo id: %w", err)
	}
	now := s.now().Format(time.RFC3339)
	item.ID = id
	item.Status = TodoPending
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := s.put(ctx, item); err != nil {
		return TodoItem{}, err
	}
	return item, nil
}

// Pending returns the user's open items, soonest deadline first. Items
// without a deadline sort after dated ones, in creation order.
func (s *TodoStore) Pending(ctx context.Context, userID string, limit int) ([]TodoItem, error) {
	if limit <= 0 {
		limit = 10
	}
	data, err := s.rdb.HGetAll(ctx, todosKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading todos for %s: %w", userID, err)
	}

	items := make([]TodoItem, 0, len(data))
	for _, raw := range data {
		var item TodoItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			continue // skip a corrupt entry rather than fail the listing
		}
		if item.Status == TodoPending {
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Deadline != "" && b.Deadline != "":
			if a.Deadline != b.Deadline {
				return a.Deadline < b.Deadline
			}
		case a.Deadline != "":
			return true
		case b.Deadline != "":
			return false
		}
		return a.ID < b.ID
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Complete marks one item done and returns the updated entry.
func (s *TodoStore) Complete(ctx context.Context, userID string, id int64) (TodoItem, error) {
	item, err := s.get(ctx, userID, id)
	if err != nil {
		return TodoItem{}, err
	}
	now := s.now().Format(time.RFC3339)
	item.Status = TodoCompleted
	item.UpdatedAt = now
	item.CompletedAt = now
	if err := s.put(ctx, item); err != nil {
		return TodoItem{}, err
	}
	return item, nil
}

// Delete removes one item outright.
func (s *TodoStore) Delete(ctx context.Context, userID string, id int64) error {
	n, err := s.rdb.HDel(ctx, todosKey(userID), strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return fmt.Errorf("deleting todo %d for %s: %w", id, userID, err)
	}
	if n == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (s *TodoStore) get(ctx context.Context, userID string, id int64) (TodoItem, error) {
	raw, err := s.rdb.HGet(ctx, todosKey(userID), strconv.FormatInt(id, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return TodoItem{}, ErrTodoNotFound
	}
	if err != nil {
		return TodoItem{}, fmt.Errorf("reading todo %d for %s: %w", id, userID, err)
	}
	var item TodoItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return TodoItem{}, fmt.Errorf("decoding todo %d for %s: %w", id, userID, err)
	}
	return item, nil
}

func (s *TodoStore) put(ctx context.Context, item TodoItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding todo: %w", err)
	}
	if err := s.rdb.HSet(ctx, todosKey(item.UserID), strconv.FormatInt(item.ID, 10), raw).Err(); err != nil {
		return fmt.Errorf("storing todo %d for %s: %w", item.ID, item.UserID, err)
	}
	return nil
}
