package api

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cardenasjm/dispo/internal/tools"
)

// NewMCPServer exposes the four availability query operations as MCP tools,
// so external agents can call the query layer directly without going
// through the orchestration loop.
func NewMCPServer(reg *tools.Registry, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"dispo",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("dispo — consultas de disponibilidad de servicios TI: servicios, promesas de servicio y afectaciones."),
		server.WithRecovery(),
	)

	// The registry is the single source of truth: the same catalog fed to
	// the model gateway is rendered here as MCP tool declarations.
	for _, op := range reg.Operations() {
		opts := []mcp.ToolOption{mcp.WithDescription(op.Description)}
		for _, p := range op.Params {
			propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
			if p.Required {
				propOpts = append(propOpts, mcp.Required())
			}
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		}
		s.AddTool(mcp.NewTool(op.Name, opts...), mcpDispatch(reg, op.Name))
	}

	return s
}

// mcpDispatch adapts one registry operation to an MCP tool handler. The MCP
// request arguments are re-marshaled to the same JSON object form the model
// gateway delivers, so both surfaces share one validation path.
func mcpDispatch(reg *tools.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.GetArguments())
		if err != nil {
			raw = []byte("{}")
		}

		result, err := reg.Dispatch(ctx, name, string(raw))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}
