package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tymem/mem-agent/internal/memory"
	"github.com/tymem/mem-agent/internal/router"
)

// TodoService manages per-user todo items: create, list pending, mark
// complete. Unlike the other services it talks to the agent's own store
// rather than a remote API, so a failure means the store is down.
type TodoService struct {
	store   *memory.TodoStore
	enabled bool
}

var _ router.Service = (*TodoService)(nil)

// NewTodoService creates the todo-management service over a todo store.
func NewTodoService(store *memory.TodoStore, enabled bool) *TodoService {
	return &TodoService{store: store, enabled: enabled}
}

func (s *TodoService) Descriptor() router.Descriptor {
	return router.Descriptor{
		Name:         "todo_list",
		Description:  "待办事项管理，支持创建、查询和完成待办",
		Capabilities: []string{"todo", "schedule"},
		Keywords:     []string{"待办", "提醒", "备忘", "日程", "记一下", "todo", "remind", "reminder"},
		Enabled:      s.enabled,
	}
}

func (s *TodoService) Score(req *router.Request) float64 {
	d := s.Descriptor()
	return matchScore(req, d.Keywords, d.Capabilities)
}

// Execute runs one todo action. The action slot selects add, list,
// complete or delete; when absent it is inferred from the other slots
// (title implies add, id implies complete, nothing implies list).
func (s *TodoService) Execute(ctx context.Context, req *router.Request) (*router.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	action := req.Arg("action", "")
	if action == "" {
		switch {
		case req.Arg("title", "") != "":
			action = "add"
		case req.Arg("id", "") != "":
			action = "complete"
		default:
			action = "list"
		}
	}

	switch action {
	case "add":
		return s.add(ctx, req)
	case "list":
		return s.list(ctx, req)
	case "complete":
		return s.complete(ctx, req)
	case "delete":
		return s.remove(ctx, req)
	default:
		return nil, router.Failf(router.KindInvalidArguments, "unknown todo action %q", action)
	}
}

func (s *TodoService) add(ctx context.Context, req *router.Request) (*router.Payload, error) {
	title := strings.TrimSpace(req.Arg("title", ""))
	if title == "" {
		return nil, router.Failf(router.KindInvalidArguments, "title is required to create a todo")
	}

	priority := 0
	if p := req.Arg("priority", ""); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return nil, router.Failf(router.KindInvalidArguments, "invalid priority %q", p)
		}
		priority = parsed
	}

	item, err := s.store.Create(ctx, memory.TodoItem{
		UserID:      req.UserID,
		Title:       title,
		Description: req.Arg("description", ""),
		Deadline:    req.Arg("deadline", ""),
		Location:    req.Arg("location", ""),
		Priority:    priority,
	})
	if err != nil {
		return nil, &router.ServiceError{Kind: router.KindRemoteUnavailable, Err: err}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 已创建待办 #%d：%s", item.ID, item.Title)
	if item.Deadline != "" {
		fmt.Fprintf(&sb, "，截止 %s", item.Deadline)
	}
	if item.Location != "" {
		fmt.Fprintf(&sb, "，地点 %s", item.Location)
	}
	return &router.Payload{
		Text: sb.String(),
		Data: map[string]any{"todo": item},
	}, nil
}

func (s *TodoService) list(ctx context.Context, req *router.Request) (*router.Payload, error) {
	limit := 10
	if l := req.Arg("limit", ""); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			return nil, router.Failf(router.KindInvalidArguments, "invalid limit %q", l)
		}
		limit = parsed
	}

	items, err := s.store.Pending(ctx, req.UserID, limit)
	if err != nil {
		return nil, &router.ServiceError{Kind: router.KindRemoteUnavailable, Err: err}
	}
	if len(items) == 0 {
		return &router.Payload{
			Text: "您当前没有未完成的待办事项。",
			Data: map[string]any{"todos": items},
		}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 您有 %d 条未完成的待办：\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&sb, "#%d %s", item.ID, item.Title)
		if item.Deadline != "" {
			fmt.Fprintf(&sb, "（截止 %s）", item.Deadline)
		}
		sb.WriteString("\n")
	}
	return &router.Payload{
		Text: strings.TrimRight(sb.String(), "\n"),
		Data: map[string]any{"todos": items},
	}, nil
}

func (s *TodoService) complete(ctx context.Context, req *router.Request) (*router.Payload, error) {
	id, err := s.todoID(req)
	if err != nil {
		return nil, err
	}
	item, err := s.store.Complete(ctx, req.UserID, id)
	if errors.Is(err, memory.ErrTodoNotFound) {
		return nil, router.Failf(router.KindInvalidArguments, "todo #%d does not exist", id)
	}
	if err != nil {
		return nil, &router.ServiceError{Kind: router.KindRemoteUnavailable, Err: err}
	}
	return &router.Payload{
		Text: fmt.Sprintf("✅ 待办 #%d 已完成：%s", item.ID, item.Title),
		Data: map[string]any{"todo": item},
	}, nil
}

func (s *TodoService) remove(ctx context.Context, req *router.Request) (*router.Payload, error) {
	id, err := s.todoID(req)
	if err != nil {
		return nil, err
	}
	err = s.store.Delete(ctx, req.UserID, id)
	if errors.Is(err, memory.ErrTodoNotFound) {
		return nil, router.Failf(router.KindInvalidArguments, "todo #%d does not exist", id)
	}
	if err != nil {
		return nil, &router.ServiceError{Kind: router.KindRemoteUnavailable, Err: err}
	}
	return &router.Payload{
		Text: fmt.Sprintf("🗑 待办 #%d 已删除", id),
		Data: map[string]any{"id": id},
	}, nil
}

func (s *TodoService) todoID(req *router.Request) (int64, error) {
	raw := req.Arg("id", "")
	if raw == "" {
		return 0, router.Failf(router.KindInvalidArguments, "todo id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, router.Failf(router.KindInvalidArguments, "invalid todo id %q", raw)
	}
	return id, nil
}
