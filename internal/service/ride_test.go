package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tymem/mem-agent/internal/router"
)

func rideRequest(args map[string]string) *router.Request {
	return router.NewRequest("帮我叫车", "u1", "s1", router.WithArgs(args))
}

func TestRideMissingDestinationIsInvalidArguments(t *testing.T) {
	svc := NewRideService("key", true)
	_, err := svc.Execute(context.Background(), rideRequest(nil))
	require.Error(t, err)
	assert.Equal(t, router.KindInvalidArguments, router.Classify(err))
}

func TestRideMissingAPIKeyIsRemoteUnavailable(t *testing.T) {
	svc := NewRideService("", true)
	_, err := svc.Execute(context.Background(), rideRequest(map[string]string{"destination": "机场"}))
	require.Error(t, err)
	assert.Equal(t, router.KindRemoteUnavailable, router.Classify(err))
}

func TestRideBooking(t *testing.T) {
	svc := NewRideService("key", true)
	payload, err := svc.Execute(context.Background(), rideRequest(map[string]string{
		"destination": "首都机场",
		"origin":      "国贸",
		"car_type":    "专车",
	}))
	require.NoError(t, err)

	assert.Contains(t, payload.Text, "首都机场")
	assert.Contains(t, payload.Text, "专车")
	assert.Equal(t, "专车", payload.Data["car_type"])
	assert.NotEmpty(t, payload.Data["order_id"])

	fare, ok := payload.Data["fare"].(float64)
	require.True(t, ok)
	assert.Greater(t, fare, 0.0)
}

func TestRideUnknownCarClassFallsBackToDefault(t *testing.T) {
	svc := NewRideService("key", true)
	payload, err := svc.Execute(context.Background(), rideRequest(map[string]string{
		"destination": "机场",
		"car_type":    "火箭",
	}))
	require.NoError(t, err)
	assert.Equal(t, defaultCarClass, payload.Data["car_type"])
}

func TestRideFareIsDeterministicPerRoute(t *testing.T) {
	svc := NewRideService("key", true)
	args := map[string]string{"destination": "机场", "origin": "国贸"}

	first, err := svc.Execute(context.Background(), rideRequest(args))
	require.NoError(t, err)
	second, err := svc.Execute(context.Background(), rideRequest(args))
	require.NoError(t, err)

	assert.Equal(t, first.Data["fare"], second.Data["fare"])
	assert.Equal(t, first.Data["distance_km"], second.Data["distance_km"])
	assert.NotEqual(t, first.Data["order_id"], second.Data["order_id"])
}

func TestRideScoreMatchesKeywords(t *testing.T) {
	svc := NewRideService("key", true)
	assert.GreaterOrEqual(t, svc.Score(router.NewRequest("帮我打车去机场", "u1", "s1")), 0.5)
	assert.Zero(t, svc.Score(router.NewRequest("今天天气如何", "u1", "s1")))
}
