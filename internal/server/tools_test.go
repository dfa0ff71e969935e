package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"placeholder_generate",
		"placeholder_generate_batch",
		"placeholder_palette",
		"placeholder_cache_stats",
		"placeholder_cache_evict",
		"placeholder_cache_clear",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("tools: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want object", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required property %s not declared", r)
				}
			}

			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool does not marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_GenerateProperties(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "placeholder_generate" {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for _, p := range []string{"src", "data_base64", "width", "height", "quality"} {
			if _, ok := props[p]; !ok {
				t.Errorf("placeholder_generate missing property %s", p)
			}
		}
		return
	}
	t.Fatal("placeholder_generate not defined")
}
