// Package mcp exposes the ITR query tools over a stdio JSON-RPC 2.0
// server speaking the Model Context Protocol. Tool results are formatted
// text reports; semantic failures (not found, no data, bad action) travel
// inside the tool result as an error-with-guidance payload, never as
// protocol errors.
package mcp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"itrq/internal/logging"
	"itrq/internal/processor"
	"itrq/internal/query"
	"itrq/internal/storage"
)

// Server represents the MCP server
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *logging.Logger
	version string

	engine    *query.Engine
	processor *processor.Processor
	metrics   *storage.DB // nil when metrics recording is disabled

	tools map[string]ToolHandler
}

// NewServer creates an MCP server over the given engine and processor.
// metrics may be nil; tool calls are then not recorded.
func NewServer(version string, engine *query.Engine, proc *processor.Processor, metrics *storage.DB, logger *logging.Logger) *Server {
	s := &Server{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		logger:    logger,
		version:   version,
		engine:    engine,
		processor: proc,
		metrics:   metrics,
	}
	s.registerTools()
	return s
}

// Start starts the MCP server and begins processing messages
func (s *Server) Start() error {
	s.logger.Info("MCP server starting", map[string]interface{}{
		"version": s.version,
	})

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)", nil)
				return nil
			}
			s.logger.Error("Error reading message", map[string]interface{}{
				"error": err.Error(),
			})

			if msg != nil && msg.Id != nil {
				_ = s.writeError(msg.Id, ParseError, fmt.Sprintf("Failed to parse message: %v", err))
			}
			continue
		}

		// Notifications don't generate responses.
		response := s.handleMessage(msg)
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// SetStdin sets the input stream (for testing)
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil // Reset scanner so it will be recreated with new reader
}

// SetStdout sets the output stream (for testing)
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}
