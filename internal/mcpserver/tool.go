package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tymem/mem-agent/internal/router"
)

// slot describes one named argument a tool accepts over MCP.
type slot struct {
	name        string
	description string
	required    bool
}

// serviceSlots maps each tool service to the argument slots it consumes
// from router.Request.Args. The MCP schema is declared from this table so
// clients see typed parameters instead of a free-form utterance only.
var serviceSlots = map[string][]slot{
	"didi_ride": {
		{name: "destination", description: "目的地地址", required: true},
		{name: "origin", description: "出发地地址（默认当前位置）"},
		{name: "car_type", description: "车型：快车、专车、出租车（默认快车）"},
	},
	"amap_weather": {
		{name: "city", description: "查询城市，如 北京、上海", required: true},
	},
	"time_query": {
		{name: "timezone", description: "IANA 时区名，如 Asia/Shanghai"},
		{name: "format", description: "输出格式：full、date、time、datetime"},
		{name: "language", description: "语言：zh 或 en"},
	},
	"todo_list": {
		{name: "action", description: "操作：add、list、complete、delete（缺省按其他参数推断）"},
		{name: "title", description: "待办标题（add 必填）"},
		{name: "description", description: "详细描述"},
		{name: "deadline", description: "截止时间，RFC 3339 格式"},
		{name: "location", description: "地点"},
		{name: "id", description: "待办编号（complete、delete 必填）"},
		{name: "limit", description: "list 返回条数上限"},
	},
}

// toolAdapter bridges one router.Service into an MCP tool.
type toolAdapter struct {
	svc router.Service
}

func newToolAdapter(svc router.Service) *toolAdapter {
	return &toolAdapter{svc: svc}
}

// Definition builds the MCP tool schema from the service descriptor and
// its slot table.
func (a *toolAdapter) Definition() mcp.Tool {
	d := a.svc.Descriptor()
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithString("query", mcp.Description("原始用户请求文本（可选）")),
		mcp.WithString("user_id", mcp.Description("用户标识（可选）")),
	}
	for _, s := range serviceSlots[d.Name] {
		strOpts := []mcp.PropertyOption{mcp.Description(s.description)}
		if s.required {
			strOpts = append(strOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(s.name, strOpts...))
	}
	return mcp.NewTool(d.Name, opts...)
}

// Handle executes the service with arguments lifted from the MCP call.
// Routing is bypassed: the MCP client already chose the tool.
func (a *toolAdapter) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := a.svc.Descriptor()

	args := make(map[string]string)
	for _, s := range serviceSlots[d.Name] {
		if v := req.GetString(s.name, ""); v != "" {
			args[s.name] = v
		}
	}

	request := router.NewRequest(
		req.GetString("query", ""),
		req.GetString("user_id", "mcp"),
		"mcp",
		router.WithArgs(args),
	)

	payload, err := a.svc.Execute(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(payload.Text), nil
}
