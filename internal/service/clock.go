package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tymem/mem-agent/internal/router"
)

// ClockService answers time and date questions locally. It keeps the same
// timezone/format/language surface as the remote time MCP server it
// replaces, without the process round-trip.
type ClockService struct {
	defaultTZ string
	enabled   bool
	now       func() time.Time
}

var _ router.Service = (*ClockService)(nil)

// NewClockService creates the time-query service. defaultTZ is an IANA
// zone name such as "Asia/Shanghai".
func NewClockService(defaultTZ string, enabled bool) *ClockService {
	if defaultTZ == "" {
		defaultTZ = "Asia/Shanghai"
	}
	return &ClockService{defaultTZ: defaultTZ, enabled: enabled, now: time.Now}
}

func (s *ClockService) Descriptor() router.Descriptor {
	return router.Descriptor{
		Name:         "time_query",
		Description:  "查询当前时间和日期，支持不同时区和中英文格式",
		Capabilities: []string{"time", "date"},
		Keywords:     []string{"时间", "几点", "日期", "几号", "星期几", "what time", "current time", "today's date"},
		Enabled:      s.enabled,
	}
}

func (s *ClockService) Score(req *router.Request) float64 {
	d := s.Descriptor()
	return matchScore(req, d.Keywords, d.Capabilities)
}

var zhWeekdays = [...]string{"日", "一", "二", "三", "四", "五", "六"}

// Execute formats the current time in the requested timezone, format
// (full, date, time, datetime) and language (zh, en).
func (s *ClockService) Execute(ctx context.Context, req *router.Request) (*router.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tzName := req.Arg("timezone", s.defaultTZ)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, router.Failf(router.KindInvalidArguments, "unknown timezone %q", tzName)
	}

	now := s.now().In(loc)
	format := req.Arg("format", "full")
	lang := req.Arg("language", "zh")

	var text string
	switch format {
	case "date":
		if lang == "zh" {
			text = now.Format("2006年01月02日")
		} else {
			text = now.Format("2006-01-02")
		}
	case "time":
		if lang == "zh" {
			text = now.Format("15时04分05秒")
		} else {
			text = now.Format("15:04:05")
		}
	case "datetime":
		if lang == "zh" {
			text = now.Format("2006年01月02日 15时04分05秒")
		} else {
			text = now.Format("2006-01-02 15:04:05")
		}
	default: // full
		if lang == "zh" {
			text = fmt.Sprintf("现在是%s 星期%s（%s）",
				now.Format("2006年01月02日 15时04分05秒"), zhWeekdays[now.Weekday()], tzName)
		} else {
			text = fmt.Sprintf("It is %s (%s)", now.Format("Mon, 02 Jan 2006 15:04:05"), tzName)
		}
	}

	return &router.Payload{
		Text: text,
		Data: map[string]any{
			"timezone": tzName,
			"unix":     now.Unix(),
			"rfc3339":  now.Format(time.RFC3339),
		},
	}, nil
}
