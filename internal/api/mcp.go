package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oxygen-anoxia/recommend-Agent/internal/agent"
	"github.com/oxygen-anoxia/recommend-Agent/internal/match"
	"github.com/oxygen-anoxia/recommend-Agent/internal/session"
	"github.com/oxygen-anoxia/recommend-Agent/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. Store is optional; without
// it the recent-interactions resource returns an empty list.
type MCPDeps struct {
	Agent *agent.Agent
	Store *storage.Store
}

// NewMCPServer creates an MCP server exposing the profile and matching
// tools under their original names.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"recommend-agent",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("留学推荐智能体：维护申请者画像，并根据画像完整度执行确定匹配或猜测匹配。"),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("update_user_profile",
			mcp.WithDescription("根据用户输入，使用LLM提取或更新用户画像中的字段（如GPA, 目标国家, 专业等）。"),
			mcp.WithString("user_input", mcp.Description("用户的原始输入文本。"), mcp.Required()),
			mcp.WithString("user_id", mcp.Description("用户标识，缺省为 default_user")),
			mcp.WithString("session_id", mcp.Description("会话标识，缺省为 default_session")),
		),
		mcpUpdateProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("run_certain_matching",
			mcp.WithDescription("当用户画像完整时，执行确定匹配：项目推荐加相似案例检索。"),
			mcp.WithString("user_id", mcp.Description("用户标识，缺省为 default_user")),
			mcp.WithString("session_id", mcp.Description("会话标识，缺省为 default_session")),
		),
		mcpRunMatching(deps, deps.Agent.RunExactMatch),
	)

	s.AddTool(
		mcp.NewTool("run_guessed_matching",
			mcp.WithDescription("当用户画像缺失1-2个重要字段时，并行猜测候选值并执行匹配。"),
			mcp.WithString("user_id", mcp.Description("用户标识，缺省为 default_user")),
			mcp.WithString("session_id", mcp.Description("会话标识，缺省为 default_session")),
		),
		mcpRunMatching(deps, deps.Agent.RunSpeculativeMatch),
	)

	s.AddResource(
		mcp.NewResource(
			"user://profile",
			"User Profile",
			mcp.WithResourceDescription("Current applicant profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"user://recent",
			"Recent Interactions",
			mcp.WithResourceDescription("Last 10 logged turns (summaries only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

// mcpSessionKey pulls the conversation identity from the tool arguments.
func mcpSessionKey(req mcp.CallToolRequest) session.Key {
	return session.Key{
		UserID:    req.GetString("user_id", defaultUserID),
		SessionID: req.GetString("session_id", defaultSessionID),
	}
}

func mcpUpdateProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := req.RequireString("user_input")
		if err != nil {
			return mcpError("用户输入不能为空"), nil
		}

		result := deps.Agent.UpdateProfile(ctx, mcpSessionKey(req), input)
		return mcpResult(result), nil
	}
}

func mcpRunMatching(deps MCPDeps, run func(context.Context, session.Key) match.Result) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := run(ctx, mcpSessionKey(req))
		return mcpResult(result), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p := deps.Agent.Profile(session.Key{UserID: defaultUserID, SessionID: defaultSessionID})

		b, err := json.Marshal(map[string]any{
			"profile":            p,
			"completion_summary": p.CompletionSummary(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type interactionSummary struct {
			ID        string `json:"id"`
			CreatedAt string `json:"created_at"`
			Query     string `json:"query"`
			Status    string `json:"status"`
			MatchType string `json:"match_type,omitempty"`
		}

		summaries := []interactionSummary{}
		if deps.Store != nil {
			interactions, err := deps.Store.GetRecentInteractions(defaultUserID, defaultSessionID, 10)
			if err != nil {
				return nil, fmt.Errorf("failed to get recent interactions: %w", err)
			}
			for _, ix := range interactions {
				query := ix.UserQuery
				if utf8.RuneCountInString(query) > 200 {
					runes := []rune(query)
					query = string(runes[:200]) + "..."
				}
				summaries = append(summaries, interactionSummary{
					ID:        ix.ID,
					CreatedAt: ix.CreatedAt.Format(time.RFC3339),
					Query:     query,
					Status:    ix.Status,
					MatchType: ix.MatchType,
				})
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal interactions: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

// mcpResult serializes an envelope. Error envelopes carry the IsError flag
// so MCP clients can distinguish them without parsing.
func mcpResult(result match.Result) *mcp.CallToolResult {
	b, err := json.Marshal(result)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	if result.Status == match.StatusError {
		return mcpError(string(b))
	}
	return mcpText(string(b))
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
