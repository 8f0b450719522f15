package mcp

// Tool represents a tool exposed via MCP
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler handles a tool call and returns the formatted result text.
type ToolHandler func(params map[string]interface{}) (string, error)

// GetToolDefinitions returns all tool definitions
func (s *Server) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "queryComprehensive",
			Description: "Get comprehensive ITR status for a subsystem: overall counts, " +
				"per-type breakdown (ITR-A/B/C), completion rate, and next-action guidance. " +
				"Use when asked about ITR counts, status, or completion for a subsystem.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"subsystemId": map[string]interface{}{
						"type":        "string",
						"description": "The SubSystem ID to query (e.g. \"7-1100-P-01-05\")",
					},
				},
				"required": []string{"subsystemId"},
			},
		},
		{
			Name: "search",
			Description: "Find subsystems or systems by pattern, or list what is available. " +
				"Matches identifiers and descriptions case-insensitively. Leave pattern empty " +
				"for an overview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pattern": map[string]interface{}{
						"type":        "string",
						"description": "Optional filter pattern (e.g. \"7-1100\", \"pump\")",
					},
					"scope": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"subsystem", "system"},
						"default":     "subsystem",
						"description": "Whether to search subsystems or systems",
					},
				},
			},
		},
		{
			Name: "manageCache",
			Description: "Check or refresh the dataset cache. Use action \"status\" to see " +
				"cache age and validity, \"reload\" to force a fresh read of the source file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"action": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"status", "reload"},
						"description": "The cache action to perform",
					},
				},
				"required": []string{"action"},
			},
		},
	}
}

// registerTools wires tool names to their handlers.
func (s *Server) registerTools() {
	s.tools = map[string]ToolHandler{
		"queryComprehensive": s.handleQueryComprehensive,
		"search":             s.handleSearch,
		"manageCache":        s.handleManageCache,
	}
}
