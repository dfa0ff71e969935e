package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/placeholder-mcp/internal/placeholder"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "placeholder_generate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments return -32602. Any other tool failure returns a
// JSON-RPC error response with code -32000 and the error text as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", zap.String("tool", params.Name), zap.Error(err))
		if errors.Is(err, placeholder.ErrInvalidRequest) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Generation
	case "placeholder_generate":
		return s.handleGenerate(ctx, args)
	case "placeholder_generate_batch":
		return s.handleGenerateBatch(ctx, args)

	// Analysis
	case "placeholder_palette":
		return s.handlePalette(ctx, args)

	// Cache
	case "placeholder_cache_stats":
		return s.svc.Cache().Stats(), nil
	case "placeholder_cache_evict":
		return s.handleCacheEvict(args)
	case "placeholder_cache_clear":
		s.svc.Cache().Clear()
		return map[string]interface{}{"cleared": true}, nil

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", placeholder.ErrInvalidRequest, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", placeholder.ErrInvalidRequest, err)
	}
	return nil
}

// === Generation Handlers ===

func (s *Server) handleGenerate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a placeholder.Request
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.Source()
	if err != nil {
		return nil, err
	}
	return s.svc.Placeholder(ctx, src, a.Options())
}

type batchResult struct {
	Placeholders map[string]string          `json:"placeholders"`
	Failures     []placeholder.BatchFailure `json:"failures"`
	Count        int                        `json:"count"`
}

func (s *Server) handleGenerateBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a placeholder.BatchRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Sources) == 0 {
		return nil, fmt.Errorf("%w: sources must not be empty", placeholder.ErrInvalidRequest)
	}
	sources, opts, err := a.Resolve()
	if err != nil {
		return nil, err
	}
	if err := s.svc.CheckOptions(opts); err != nil {
		return nil, err
	}

	res := s.svc.Batch(ctx, sources, opts)
	return &batchResult{
		Placeholders: res.Placeholders,
		Failures:     res.Failures,
		Count:        len(res.Placeholders),
	}, nil
}

// === Analysis Handlers ===

type paletteArgs struct {
	Src        string `json:"src"`
	DataBase64 string `json:"data_base64"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

func (s *Server) handlePalette(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a paletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	if a.Count < 0 {
		return nil, fmt.Errorf("%w: count must be positive", placeholder.ErrInvalidRequest)
	}

	src, err := placeholder.SourceSpec{Src: a.Src, DataBase64: a.DataBase64, Name: a.Name}.Source()
	if err != nil {
		return nil, err
	}
	return s.svc.Palette(ctx, src, a.Count)
}

// === Cache Handlers ===

type cacheEvictArgs struct {
	Key string `json:"key"`
}

func (s *Server) handleCacheEvict(args json.RawMessage) (interface{}, error) {
	var a cacheEvictArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Key == "" {
		return nil, fmt.Errorf("%w: key is required", placeholder.ErrInvalidRequest)
	}

	_, existed := s.svc.Cache().Lookup(a.Key)
	s.svc.Cache().Evict(a.Key)
	return map[string]interface{}{
		"key":     a.Key,
		"evicted": existed,
	}, nil
}
