// Package mcp exposes the calculator as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lemonberrylabs/calculator/pkg/accumulator"
	"github.com/lemonberrylabs/calculator/pkg/expr"
)

// Tools holds the handlers registered on the MCP server.
type Tools struct {
	logger *slog.Logger
}

// NewServer creates an MCP server with the calculator tools registered.
func NewServer(name, version string, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	t := &Tools{logger: logger}
	s.AddTool(mcp.NewTool("calculate",
		mcp.WithDescription("Evaluate an arithmetic expression using + - * / with standard precedence. Returns the result text, or Error."),
		mcp.WithString("expression",
			mcp.Required(),
			mcp.Description("Expression such as '2+3*4' or '-5+3'"),
		),
	), t.Calculate)

	s.AddTool(mcp.NewTool("to_postfix",
		mcp.WithDescription("Convert an arithmetic expression to space-separated postfix (reverse Polish) order"),
		mcp.WithString("expression",
			mcp.Required(),
			mcp.Description("Infix expression to convert"),
		),
	), t.ToPostfix)

	s.AddTool(mcp.NewTool("press_keys",
		mcp.WithDescription("Simulate calculator key presses on a fresh calculator and return the display"),
		mcp.WithString("keys",
			mcp.Required(),
			mcp.Description("Space-separated keys: digits, '.', + - * /, '=', 'C' (clear), 'CE' (clear entry), '<' (backspace)"),
		),
	), t.PressKeys)

	return s
}

// Calculate handles the calculate tool.
func (t *Tools) Calculate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expression, ok := request.GetArguments()["expression"].(string)
	if !ok {
		return mcp.NewToolResultError("expression is required"), nil
	}

	res := expr.Explain(expression)
	if res.Err != nil {
		t.logger.Debug("calculation failed", "expression", expression, "err", res.Err)
		return mcp.NewToolResultText(fmt.Sprintf("%s\n(%v)", res.Display, res.Err)), nil
	}
	return mcp.NewToolResultText(res.Display), nil
}

// ToPostfix handles the to_postfix tool.
func (t *Tools) ToPostfix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expression, ok := request.GetArguments()["expression"].(string)
	if !ok {
		return mcp.NewToolResultError("expression is required"), nil
	}

	pf, err := expr.ToPostfix(expression)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error converting expression: %v", err)), nil
	}
	return mcp.NewToolResultText(pf), nil
}

// PressKeys handles the press_keys tool.
func (t *Tools) PressKeys(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, ok := request.GetArguments()["keys"].(string)
	if !ok {
		return mcp.NewToolResultError("keys is required"), nil
	}

	acc := accumulator.New()
	if err := acc.PressAll(strings.Fields(keys)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d := acc.Display()
	content := "entry: " + d.Entry
	if d.Pending != "" {
		content += "\npending: " + d.Pending
	}
	return mcp.NewToolResultText(content), nil
}
