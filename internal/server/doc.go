// Package server implements the MCP (Model Context Protocol) server for
// image placeholders.
//
// This package provides a JSON-RPC 2.0 server that exposes placeholder
// generation through the MCP protocol, so an agent building a page or app can
// ask for LQIP data URIs without running an image pipeline itself.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Generation:
//   - placeholder_generate: One placeholder from src or data_base64
//   - placeholder_generate_batch: Many placeholders, failures listed separately
//
// Analysis:
//   - placeholder_palette: Average colour and dominant palette
//
// Cache:
//   - placeholder_cache_stats: Entry count and hit/miss counters
//   - placeholder_cache_evict: Drop one key
//   - placeholder_cache_clear: Drop everything
//
// # Caching
//
// All generate calls go through the placeholder.Service session cache, keyed
// by source and rendition. The cache lives as long as the server process.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses with:
//   - code: -32601 (unknown method), -32602 (invalid params or unknown tool)
//     or -32000 (tool execution failure)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(svc, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server error", zap.Error(err))
//	}
package server
