package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// bundleFieldSchema lists the tunable fields accepted by update_parameters.
func bundleFieldSchema() map[string]interface{} {
	level := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255, "description": desc}
	}
	radius := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 20, "description": desc}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"value_threshold":      level("Minimum HSV value kept by the brightness mask"),
			"erosion_radius":       radius("Erosion radius of the brightness mask (square)"),
			"saturation_threshold": level("Minimum HSV saturation kept by the saturation mask"),
			"close_radius_1":       radius("Closing radius of the saturation mask (cross)"),
			"open_radius_1":        radius("Opening radius of the saturation mask (cross)"),
			"hue_start":            level("First hue of the color band, 0-255 scale"),
			"hue_width":            level("Width of the color band; wraps past 255"),
			"open_radius_2":        radius("Opening radius of the combined mask (square)"),
			"close_radius_2":       radius("Closing radius of the combined mask (square)"),
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Detection
		{
			Name:        "find_objects",
			Description: "Select a color preset, run one pass on the current frame and return the floor distance (cm) and direction of every puck found. distances and directions are parallel arrays.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "integer",
						"enum":        []int{0, 1, 2, 3},
						"description": "Color id: 0=RED, 1=GREEN, 2=BLUE, 3=YELLOW",
					},
				},
				"required": []string{"color"},
			},
		},

		// Frames
		{
			Name:        "push_frame",
			Description: "Load an image file and make it the current frame. Images of another size are resized to the configured frame size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "save_image",
			Description: "Write the current frame to a file. The format follows the extension; use .png for a lossless copy.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_name": map[string]interface{}{
						"type":        "string",
						"description": "Destination path",
					},
				},
				"required": []string{"file_name"},
			},
		},
		{
			Name:        "sample_color",
			Description: "Get the color of the current frame at a pixel, including the 0-255 HSV values the masks compare against.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"x", "y"},
			},
		},

		// Calibration
		{
			Name:        "set_calibration",
			Description: "Enable or disable calibration mode. Debug views are only available while it is enabled; detection results do not change.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"enabled": map[string]interface{}{
						"type":        "boolean",
						"description": "Calibration mode on or off",
					},
				},
				"required": []string{"enabled"},
			},
		},
		{
			Name:        "get_parameters",
			Description: "Return the active color preset, its threshold bundle and version, the camera geometry and the calibration mode.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "update_parameters",
			Description: "Optionally select a preset, then overwrite the given bundle fields. The change is validated and applied as one step; on error nothing changes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"preset": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"RED", "GREEN", "BLUE", "YELLOW"},
						"description": "Preset to select before applying fields",
					},
					"fields": bundleFieldSchema(),
				},
			},
		},
		{
			Name:        "get_debug_views",
			Description: "Return the intermediate images of the latest pass as base64 PNGs: frame, value/saturation/color masks, rotated hue plane, final mask and a contour overlay with distance guides. Requires calibration mode.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
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
