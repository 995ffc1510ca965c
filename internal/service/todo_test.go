package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tymem/mem-agent/internal/memory"
	"github.com/tymem/mem-agent/internal/router"
)

func todoService(t *testing.T) *TodoService {
	t.Helper()
	mr := miniredis.RunT(t)
	store := memory.NewTodoStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return NewTodoService(store, true)
}

func todoRequest(utterance string, args map[string]string) *router.Request {
	return router.NewRequest(utterance, "u1", "s1", router.WithArgs(args))
}

func TestTodoAddRequiresTitle(t *testing.T) {
	svc := todoService(t)
	_, err := svc.Execute(context.Background(), todoRequest("帮我记个待办", map[string]string{"action": "add"}))
	require.Error(t, err)
	assert.Equal(t, router.KindInvalidArguments, router.Classify(err))
}

func TestTodoAddAndList(t *testing.T) {
	svc := todoService(t)
	ctx := context.Background()

	payload, err := svc.Execute(ctx, todoRequest("帮我记个待办", map[string]string{
		"title":    "与张总讨论技术升级",
		"deadline": "2026-09-01T08:30:00Z",
		"location": "会议室A",
	}))
	require.NoError(t, err)
	assert.Contains(t, payload.Text, "与张总讨论技术升级")
	assert.Contains(t, payload.Text, "会议室A")

	listed, err := svc.Execute(ctx, todoRequest("我的待办", nil))
	require.NoError(t, err)
	assert.Contains(t, listed.Text, "#1 与张总讨论技术升级")
}

func TestTodoListEmpty(t *testing.T) {
	svc := todoService(t)
	payload, err := svc.Execute(context.Background(), todoRequest("我有什么待办", nil))
	require.NoError(t, err)
	assert.Contains(t, payload.Text, "没有未完成的待办")
}

func TestTodoComplete(t *testing.T) {
	svc := todoService(t)
	ctx := context.Background()

	_, err := svc.Execute(ctx, todoRequest("记待办", map[string]string{"title": "买牛奶"}))
	require.NoError(t, err)

	payload, err := svc.Execute(ctx, todoRequest("完成待办", map[string]string{"id": "1"}))
	require.NoError(t, err)
	assert.Contains(t, payload.Text, "已完成")
	assert.Contains(t, payload.Text, "买牛奶")

	listed, err := svc.Execute(ctx, todoRequest("我的待办", nil))
	require.NoError(t, err)
	assert.Contains(t, listed.Text, "没有未完成的待办")
}

func TestTodoCompleteUnknownIDIsInvalidArguments(t *testing.T) {
	svc := todoService(t)
	_, err := svc.Execute(context.Background(), todoRequest("完成待办", map[string]string{"id": "99"}))
	require.Error(t, err)
	assert.Equal(t, router.KindInvalidArguments, router.Classify(err))
}

func TestTodoBadIDIsInvalidArguments(t *testing.T) {
	svc := todoService(t)
	_, err := svc.Execute(context.Background(), todoRequest("完成待办", map[string]string{"id": "abc"}))
	require.Error(t, err)
	assert.Equal(t, router.KindInvalidArguments, router.Classify(err))
}

func TestTodoStoreDownIsRemoteUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	store := memory.NewTodoStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	svc := NewTodoService(store, true)
	mr.Close()

	_, err := svc.Execute(context.Background(), todoRequest("我的待办", nil))
	require.Error(t, err)
	assert.Equal(t, router.KindRemoteUnavailable, router.Classify(err))
}

func TestTodoScoreMatchesKeywords(t *testing.T) {
	svc := todoService(t)
	assert.GreaterOrEqual(t, svc.Score(router.NewRequest("提醒我明天上午开会", "u1", "s1")), 0.5)
	assert.GreaterOrEqual(t, svc.Score(router.NewRequest("我的待办有哪些", "u1", "s1")), 0.5)
	assert.Zero(t, svc.Score(router.NewRequest("今天北京天气怎么样", "u1", "s1")))
	assert.Zero(t, svc.Score(router.NewRequest("你好", "u1", "s1")))
}

func TestTodoRequestRoutesToTodo(t *testing.T) {
	registry := router.NewRegistry()
	registry.Register(NewRideService("test-key", true))
	registry.Register(NewClockService("Asia/Shanghai", true))
	registry.Register(todoService(t))
	registry.Seal()
	rt := router.New(registry, router.Config{})

	result := rt.Dispatch(context.Background(), router.NewRequest("提醒我明天上午开会", "u1", "s1",
		router.WithArgs(map[string]string{"title": "明天上午开会"})))

	require.True(t, result.Handled())
	assert.Equal(t, "todo_list", result.Service)
	assert.Contains(t, result.Payload.Text, "明天上午开会")
}
