package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// renditionProperties are the optional size and quality arguments shared by
// the generate tools.
func renditionProperties() map[string]interface{} {
	return map[string]interface{}{
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Placeholder width in pixels. Default 20, at most the configured maximum (256 by default)",
			"default":     20,
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Placeholder height in pixels. Default 20, at most the configured maximum (256 by default)",
			"default":     20,
		},
		"quality": map[string]interface{}{
			"type":        "number",
			"description": "JPEG quality between 0 and 1. Default 0.3",
			"default":     0.3,
		},
	}
}

func sourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"src": map[string]interface{}{
			"type":        "string",
			"description": "Image location: http(s) URL, data URI, file:// URL or absolute path",
		},
		"data_base64": map[string]interface{}{
			"type":        "string",
			"description": "Raw image bytes, base64-encoded. Use instead of src",
		},
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Optional label for an inline image",
		},
	}
}

func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Generation
		{
			Name:        "placeholder_generate",
			Description: "Generate a tiny blurred JPEG placeholder (LQIP) for an image and return it as a data URI. Results are cached for the session.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": merge(sourceProperties(), renditionProperties()),
			},
		},
		{
			Name:        "placeholder_generate_batch",
			Description: "Generate placeholders for several images at once. Failed sources are left out of the result and listed under failures.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(map[string]interface{}{
					"sources": map[string]interface{}{
						"type":        "array",
						"description": "Image locations, or objects with src or data_base64 and an optional name",
						"items": map[string]interface{}{
							"oneOf": []interface{}{
								map[string]interface{}{"type": "string"},
								map[string]interface{}{
									"type":       "object",
									"properties": sourceProperties(),
								},
							},
						},
					},
				}, renditionProperties()),
				"required": []string{"sources"},
			},
		},

		// Analysis
		{
			Name:        "placeholder_palette",
			Description: "Extract the average colour and dominant palette of an image, e.g. for a solid-colour fallback.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(sourceProperties(), map[string]interface{}{
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colours to return. Default 5",
						"default":     5,
					},
				}),
			},
		},

		// Cache
		{
			Name:        "placeholder_cache_stats",
			Description: "Report session cache size and hit/miss counters.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "placeholder_cache_evict",
			Description: "Remove one entry from the session cache so it is regenerated on next use.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Cache key as returned by placeholder_generate",
					},
				},
				"required": []string{"key"},
			},
		},
		{
			Name:        "placeholder_cache_clear",
			Description: "Empty the session cache.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
