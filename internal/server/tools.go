package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// sourceDescription explains the input every tool shares.
const sourceDescription = " Provide the drawing either as 'path' (a CSV file of path_id,polyline_id,x,y rows, cached after the first read) or as 'csv' (the same rows inline)."

// withSource adds the shared path/csv properties to a tool's own properties.
func withSource(props map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to a CSV point table",
		},
		"csv": map[string]interface{}{
			"type":        "string",
			"description": "Inline CSV point table, one path_id,polyline_id,x,y row per line",
		},
	}
	for k, v := range props {
		out[k] = v
	}
	return out
}

func renderProperties() map[string]interface{} {
	return map[string]interface{}{
		"title": map[string]interface{}{
			"type":        "string",
			"description": "Optional plot title",
		},
		"size": map[string]interface{}{
			"type":        "integer",
			"description": "Canvas side in pixels. Defaults to the server's configured render size",
		},
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Optional scale factor applied to the finished image. Default 1.0",
			"default":     1.0,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Input Inspection
		{
			Name:        "shapes_load",
			Description: "Load a drawing and report its path, polyline and point counts plus its bounding box." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withSource(nil),
			},
		},

		// Analysis
		{
			Name:        "shapes_classify",
			Description: "Classify every polyline as rectangle, circle, regular_polygon, star or irregular, with the fitted centre and radii." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withSource(nil),
			},
		},
		{
			Name:        "shapes_symmetry",
			Description: "Test every polyline for a vertex pair mirrored through its centroid." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withSource(nil),
			},
		},
		{
			Name:        "shapes_gaps",
			Description: "Find edges longer than twice the mean edge length in every polyline. Indices refer to the edge from vertex i to vertex i+1." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withSource(nil),
			},
		},

		// Processing
		{
			Name:        "shapes_process",
			Description: "Run the full pipeline: classify, regularize, check symmetry and fill gaps with a cubic spline. Returns the output groups and one report per polyline." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSource(map[string]interface{}{
					"include_output": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the output point groups in the result. Default true",
						"default":     true,
					},
				}),
			},
		},

		// Rendering
		{
			Name:        "shapes_render",
			Description: "Plot the drawing as a PNG with equal axis scales, one colour per group. Renders the processed output unless stage is 'original'." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSource(mergeProperties(renderProperties(), map[string]interface{}{
					"stage": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"original", "processed"},
						"description": "Which geometry to draw. Default processed",
						"default":     "processed",
					},
				})),
			},
		},
		{
			Name:        "shapes_render_diff",
			Description: "Render the original and processed drawings over the same window and return their pixel difference with the share of changed pixels." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withSource(renderProperties()),
			},
		},

		// Export
		{
			Name:        "shapes_export_csv",
			Description: "Process the drawing and export the output as i,j,x,y rows. Writes to output_path when given, otherwise returns the text." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSource(map[string]interface{}{
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional absolute path of the CSV file to write",
					},
				}),
			},
		},
		{
			Name:        "shapes_export_svg",
			Description: "Process the drawing and export every output group as a closed, unfilled polygon. Writes to output_path when given, otherwise returns the SVG text." + sourceDescription,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withSource(map[string]interface{}{
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional absolute path of the SVG file to write",
					},
					"margin": map[string]interface{}{
						"type":        "number",
						"description": "Blank border around the drawing in drawing units. Default 10",
						"default":     10,
					},
					"stroke_width": map[string]interface{}{
						"type":        "number",
						"description": "Outline width in drawing units. Default 1",
						"default":     1,
					},
				}),
			},
		},
	}
}

func mergeProperties(a, b map[string]interface{}) map[string]interface{} {
	for k, v := range b {
		a[k] = v
	}
	return a
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
