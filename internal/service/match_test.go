package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tymem/mem-agent/internal/router"
)

func TestMatchScoreNoOverlapIsZero(t *testing.T) {
	req := router.NewRequest("你好", "u1", "s1")
	assert.Zero(t, matchScore(req, []string{"天气", "weather"}, []string{"weather"}))
}

func TestMatchScoreSingleKeywordHit(t *testing.T) {
	req := router.NewRequest("今天北京天气怎么样", "u1", "s1")
	score := matchScore(req, []string{"天气", "weather"}, nil)
	assert.GreaterOrEqual(t, score, 0.5)
	assert.LessOrEqual(t, score, 1.0)
}

func TestMatchScoreAccumulatesHits(t *testing.T) {
	req := router.NewRequest("weather forecast for beijing", "u1", "s1")
	one := matchScore(req, []string{"weather"}, nil)
	two := matchScore(req, []string{"weather", "forecast"}, nil)
	assert.Greater(t, two, one)
}

func TestMatchScoreCapsAtOne(t *testing.T) {
	req := router.NewRequest("a b c d e f g", "u1", "s1")
	score := matchScore(req, []string{"a", "b", "c", "d", "e", "f", "g"}, nil)
	assert.Equal(t, 1.0, score)
}

func TestMatchScoreCaseInsensitiveKeywords(t *testing.T) {
	req := router.NewRequest("What's the WEATHER like?", "u1", "s1")
	assert.Greater(t, matchScore(req, []string{"Weather"}, nil), 0.0)
}

func TestMatchScoreCountsIntentTags(t *testing.T) {
	tagged := router.NewRequest("随便说点什么", "u1", "s1",
		router.WithIntentTags([]string{"weather"}))
	assert.GreaterOrEqual(t, matchScore(tagged, nil, []string{"weather"}), 0.5)
}

func TestMatchScoreDeterministic(t *testing.T) {
	req := router.NewRequest("今天北京天气怎么样", "u1", "s1")
	keywords := []string{"天气", "weather"}
	first := matchScore(req, keywords, nil)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, matchScore(req, keywords, nil))
	}
}
