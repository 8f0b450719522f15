package mcp

import (
	"encoding/json"
	"fmt"
	"time"

	"itrq/internal/errors"
)

// handleMessage processes an incoming MCP message and returns a response
func (s *Server) handleMessage(msg *MCPMessage) *MCPMessage {
	if msg.IsRequest() {
		return s.handleRequest(msg)
	}

	if msg.IsNotification() {
		s.handleNotification(msg)
		return nil
	}

	return NewErrorMessage(msg.Id, InvalidRequest, "Invalid message: not a request or notification", nil)
}

// handleRequest handles a JSON-RPC request
func (s *Server) handleRequest(msg *MCPMessage) *MCPMessage {
	s.logger.Debug("Handling request", map[string]interface{}{
		"method": msg.Method,
		"id":     msg.Id,
	})

	switch msg.Method {
	case "initialize":
		return s.handleInitializeRequest(msg)
	case "tools/list":
		return s.handleListToolsRequest(msg)
	case "tools/call":
		return s.handleCallToolRequest(msg)
	default:
		return NewErrorMessage(msg.Id, MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method), nil)
	}
}

// handleNotification handles a JSON-RPC notification
func (s *Server) handleNotification(msg *MCPMessage) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("Client initialized", nil)
	default:
		s.logger.Debug("Unknown notification", map[string]interface{}{
			"method": msg.Method,
		})
	}
}

func (s *Server) handleInitializeRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		params = make(map[string]interface{})
	}

	result, err := s.handleInitialize(params)
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}
	return NewResultMessage(msg.Id, result)
}

func (s *Server) handleListToolsRequest(msg *MCPMessage) *MCPMessage {
	return NewResultMessage(msg.Id, map[string]interface{}{
		"tools": s.GetToolDefinitions(),
	})
}

func (s *Server) handleCallToolRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected object", nil)
	}

	result, err := s.handleCallTool(params)
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}
	return NewResultMessage(msg.Id, result)
}

// handleCallTool executes a tool. Semantic failures from the tool become
// an {error, guidance} payload inside the result; only unknown tools and
// malformed requests surface as protocol errors.
func (s *Server) handleCallTool(params map[string]interface{}) (interface{}, error) {
	toolName, ok := params["name"].(string)
	if !ok {
		return nil, fmt.Errorf("missing tool name")
	}

	toolParams, ok := params["arguments"].(map[string]interface{})
	if !ok {
		toolParams = make(map[string]interface{})
	}

	handler, exists := s.tools[toolName]
	if !exists {
		return nil, fmt.Errorf("unknown tool: %s", toolName)
	}

	s.logger.Info("Calling tool", map[string]interface{}{
		"tool":   toolName,
		"params": toolParams,
	})

	start := time.Now()
	text, err := handler(toolParams)
	s.recordToolCall(toolName, time.Since(start), err)

	if err != nil {
		return textContent(errorPayload(err)), nil
	}
	return textContent(text), nil
}

// recordToolCall persists call metrics when a metrics DB is wired.
// Recording failures are logged and never fail the call.
func (s *Server) recordToolCall(toolName string, duration time.Duration, callErr error) {
	if s.metrics == nil {
		return
	}
	code := ""
	if callErr != nil {
		code = string(errors.AsItrError(callErr).Code)
	}
	if err := s.metrics.RecordToolCall(toolName, duration, callErr == nil, code); err != nil {
		s.logger.Warn("Failed to record tool call", map[string]interface{}{
			"tool":  toolName,
			"error": err.Error(),
		})
	}
}

// textContent wraps a string in the MCP tool-result content shape.
func textContent(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": text,
			},
		},
	}
}

// errorPayload renders a tool failure as a JSON error-with-guidance object.
func errorPayload(err error) string {
	ie := errors.AsItrError(err)
	payload := map[string]string{
		"error":    ie.Message,
		"guidance": ie.Guidance,
	}
	data, mErr := json.Marshal(payload)
	if mErr != nil {
		return fmt.Sprintf(`{"error":%q}`, ie.Message)
	}
	return string(data)
}
