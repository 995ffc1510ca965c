package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tymem/mem-agent/internal/router"
)

const amapWeatherURL = "https://restapi.amap.com/v3/weather/weatherInfo"

// knownCities is the scan table for pulling a city out of free text when
// the caller did not extract a city slot upstream.
var knownCities = []string{
	"北京", "上海", "广州", "深圳", "杭州", "成都", "重庆", "武汉",
	"西安", "南京", "天津", "苏州", "长沙", "郑州", "青岛", "厦门",
}

// WeatherService answers weather questions through the AMap web-service
// REST API.
type WeatherService struct {
	apiKey      string
	defaultCity string
	enabled     bool
	endpoint    string
	httpClient  *http.Client
}

var _ router.Service = (*WeatherService)(nil)

// NewWeatherService creates the weather lookup service with a dedicated
// HTTP client so a slow weather backend cannot hold requests past its
// timeout.
func NewWeatherService(apiKey, defaultCity string, enabled bool) *WeatherService {
	return &WeatherService{
		apiKey:      apiKey,
		defaultCity: defaultCity,
		enabled:     enabled,
		endpoint:    amapWeatherURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WeatherService) Descriptor() router.Descriptor {
	return router.Descriptor{
		Name:         "amap_weather",
		Description:  "高德天气查询，获取城市实时天气",
		Capabilities: []string{"weather"},
		Keywords:     []string{"天气", "气温", "温度", "下雨", "下雪", "weather", "forecast", "temperature"},
		Enabled:      s.enabled,
	}
}

func (s *WeatherService) Score(req *router.Request) float64 {
	d := s.Descriptor()
	return matchScore(req, d.Keywords, d.Capabilities)
}

// amapWeatherResponse is the subset of the AMap live-weather payload the
// service consumes.
type amapWeatherResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	Lives  []struct {
		Province      string `json:"province"`
		City          string `json:"city"`
		Weather       string `json:"weather"`
		Temperature   string `json:"temperature"`
		WindDirection string `json:"winddirection"`
		WindPower     string `json:"windpower"`
		Humidity      string `json:"humidity"`
		ReportTime    string `json:"reporttime"`
	} `json:"lives"`
}

// Execute fetches live weather for the resolved city. One network call,
// no retries.
func (s *WeatherService) Execute(ctx context.Context, req *router.Request) (*router.Payload, error) {
	city := s.resolveCity(req)
	if city == "" {
		return nil, router.Failf(router.KindInvalidArguments, "no city in request and no default city configured")
	}
	if s.apiKey == "" {
		return nil, router.Failf(router.KindRemoteUnavailable, "AMap API key is not configured")
	}

	endpoint := fmt.Sprintf("%s?city=%s&key=%s&extensions=base", s.endpoint, url.QueryEscape(city), url.QueryEscape(s.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, router.Failf(router.KindInvalidArguments, "building weather request: %v", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isHTTPTimeout(err) {
			return nil, &router.ServiceError{Kind: router.KindTimeout, Err: err}
		}
		return nil, &router.ServiceError{Kind: router.KindRemoteUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, router.Failf(router.KindRemoteUnavailable, "weather API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &router.ServiceError{Kind: router.KindRemoteUnavailable, Err: err}
	}

	var parsed amapWeatherResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, router.Failf(router.KindRemoteUnavailable, "decoding weather response: %v", err)
	}
	if parsed.Status != "1" || len(parsed.Lives) == 0 {
		return nil, router.Failf(router.KindRemoteUnavailable, "weather API error: %s", parsed.Info)
	}

	live := parsed.Lives[0]
	text := fmt.Sprintf("🌤 %s当前%s，气温 %s°C，%s风%s级，湿度 %s%%（%s发布）",
		live.City, live.Weather, live.Temperature, live.WindDirection, live.WindPower, live.Humidity, live.ReportTime)
	return &router.Payload{
		Text: text,
		Data: map[string]any{
			"city":        live.City,
			"weather":     live.Weather,
			"temperature": live.Temperature,
			"humidity":    live.Humidity,
			"report_time": live.ReportTime,
		},
	}, nil
}

// resolveCity picks the query city: explicit slot first, then a scan of
// the utterance, then the configured default.
func (s *WeatherService) resolveCity(req *router.Request) string {
	if city := strings.TrimSpace(req.Arg("city", "")); city != "" {
		return city
	}
	for _, city := range knownCities {
		if strings.Contains(req.Utterance, city) {
			return city
		}
	}
	return s.defaultCity
}

func isHTTPTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
