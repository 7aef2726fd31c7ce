package server

import (
	"strings"

	"github.com/ironsheep/fundus-vessels/internal/display"
	"github.com/ironsheep/fundus-vessels/internal/vessels"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func caseIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Case identifier, the file name stem shared by the photograph, mask and annotation (e.g. 01_h)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	stages := make([]string, len(vessels.Stages))
	for i, st := range vessels.Stages {
		stages[i] = string(st)
	}

	return []Tool{
		{
			Name:        "vessels_case_paths",
			Description: "Resolve the photograph, field-of-view mask and expert annotation paths of a case without reading them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"case_id": caseIDProperty(),
				},
				"required": []string{"case_id"},
			},
		},
		{
			Name:        "vessels_case_info",
			Description: "Read the image headers of a case: dimensions, format and file size per role, plus whether the three sizes agree.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"case_id": caseIDProperty(),
				},
				"required": []string{"case_id"},
			},
		},
		{
			Name: "vessels_recognize",
			Description: "Run blood vessel edge recognition on a case. Returns a JSON summary and the requested stage as a PNG image. " +
				"Stages: " + strings.Join(stages, ", ") + ".",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"case_id": caseIDProperty(),
					"stage": map[string]interface{}{
						"type":        "string",
						"description": "Pipeline stage to return as the image",
						"enum":        stages,
						"default":     string(vessels.StageSecondDilation),
					},
					"region": map[string]interface{}{
						"type":        "string",
						"description": "Optional named region to return instead of the whole image",
						"enum":        display.Regions,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional magnification of the returned region (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"case_id"},
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
