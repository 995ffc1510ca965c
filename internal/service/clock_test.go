package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tymem/mem-agent/internal/router"
)

func fixedClock(t *testing.T) *ClockService {
	t.Helper()
	svc := NewClockService("Asia/Shanghai", true)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 14, 30, 5, 0, time.UTC)
	}
	return svc
}

func clockRequest(args map[string]string) *router.Request {
	return router.NewRequest("现在几点了", "u1", "s1", router.WithArgs(args))
}

func TestClockFullChineseFormat(t *testing.T) {
	payload, err := fixedClock(t).Execute(context.Background(), clockRequest(nil))
	require.NoError(t, err)
	// 14:30 UTC is 22:30 in Asia/Shanghai.
	assert.Contains(t, payload.Text, "2026年08月30日 22时30分05秒")
	assert.Contains(t, payload.Text, "星期")
	assert.Equal(t, "Asia/Shanghai", payload.Data["timezone"])
}

func TestClockEnglishDateFormat(t *testing.T) {
	payload, err := fixedClock(t).Execute(context.Background(), clockRequest(map[string]string{
		"format":   "date",
		"language": "en",
	}))
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", payload.Text)
}

func TestClockTimezoneOverride(t *testing.T) {
	payload, err := fixedClock(t).Execute(context.Background(), clockRequest(map[string]string{
		"timezone": "UTC",
		"format":   "time",
		"language": "en",
	}))
	require.NoError(t, err)
	assert.Equal(t, "14:30:05", payload.Text)
}

func TestClockUnknownTimezoneIsInvalidArguments(t *testing.T) {
	_, err := fixedClock(t).Execute(context.Background(), clockRequest(map[string]string{
		"timezone": "Mars/Olympus",
	}))
	require.Error(t, err)
	assert.Equal(t, router.KindInvalidArguments, router.Classify(err))
}

func TestClockScoreMatchesKeywords(t *testing.T) {
	svc := NewClockService("Asia/Shanghai", true)
	assert.GreaterOrEqual(t, svc.Score(router.NewRequest("现在几点了", "u1", "s1")), 0.5)
	assert.Zero(t, svc.Score(router.NewRequest("今天北京天气怎么样", "u1", "s1")))
}
