package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// ocrProperties are the per-call Tesseract overrides shared by the ocr_* tools.
func ocrProperties(props map[string]interface{}) map[string]interface{} {
	props["path"] = pathProperty()
	props["name"] = map[string]interface{}{
		"type":        "string",
		"description": "Base name for the saved <name>.hocr file. Defaults to the image file name",
	}
	props["lang"] = map[string]interface{}{
		"type":        "string",
		"description": "Tesseract language code(s), joined with '+' (e.g. 'eng+deu')",
	}
	props["psm"] = map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"maximum":     13,
		"description": "Page segmentation mode (--psm)",
	}
	props["config"] = map[string]interface{}{
		"type":        "string",
		"description": "Extra tesseract options: --psm N, -l LANG, -c key=value",
	}
	return props
}

// regionProperties adds the x, y, w, h query rectangle.
func regionProperties(props map[string]interface{}) map[string]interface{} {
	props["x"] = map[string]interface{}{"type": "integer", "description": "Left edge of the region"}
	props["y"] = map[string]interface{}{"type": "integer", "description": "Top edge of the region"}
	props["w"] = map[string]interface{}{"type": "integer", "description": "Region width"}
	props["h"] = map[string]interface{}{"type": "integer", "description": "Region height"}
	return props
}

// reflowProperties adds the reflow tuning knobs.
func reflowProperties(props map[string]interface{}) map[string]interface{} {
	props["strict"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Report reflow anomalies as errors instead of returning empty text",
	}
	props["line_factor"] = map[string]interface{}{
		"type":        "number",
		"description": "Same-line threshold multiplier. Default 2.0",
		"default":     2.0,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file, to pick region coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Recognition
		{
			Name:        "ocr_words",
			Description: "Run Tesseract on an image and return every recognized word with its bounding box (x, y, w, h) and confidence, in reading order.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": ocrProperties(map[string]interface{}{}),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "ocr_region_text",
			Description: "Run Tesseract on an image and return the text of the words whose centers fall inside the rectangle. Words on one line are joined by spaces, line breaks by newlines.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": reflowProperties(regionProperties(ocrProperties(map[string]interface{}{}))),
				"required":   []string{"path", "x", "y", "w", "h"},
			},
		},
		{
			Name:        "ocr_overlay",
			Description: "Draw recognized word boxes over the image: words inside the region in green, outside in red, the region in blue. Returns a base64 PNG and the region text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": regionProperties(ocrProperties(map[string]interface{}{
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each box with its word index",
					},
					"crop": map[string]interface{}{
						"type":        "boolean",
						"description": "Return only the region instead of the whole page",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the cropped region. Default 1.0",
						"default":     1.0,
					},
					"out": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to also write the overlay to (.png, .jpg or .bmp)",
					},
				})),
				"required": []string{"path", "x", "y", "w", "h"},
			},
		},
		{
			Name:        "ocr_info",
			Description: "Report the OCR engine in use, whether it is available, its version and the default recognition settings.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Saved hOCR
		{
			Name:        "hocr_parse",
			Description: "Parse an hOCR document (inline or from a file) into the word table without running OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hocr": map[string]interface{}{
						"type":        "string",
						"description": "hOCR markup",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to a saved .hocr file",
					},
				},
			},
		},
		{
			Name:        "hocr_reflow",
			Description: "Reflow the text of a region from saved hOCR or an explicit word table, without running OCR. Give exactly one of hocr, path or words.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": reflowProperties(regionProperties(map[string]interface{}{
					"hocr": map[string]interface{}{
						"type":        "string",
						"description": "hOCR markup",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to a saved .hocr file",
					},
					"words": map[string]interface{}{
						"type":        "array",
						"description": "Word table as returned by ocr_words",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":    map[string]interface{}{"type": "integer"},
								"y":    map[string]interface{}{"type": "integer"},
								"w":    map[string]interface{}{"type": "integer"},
								"h":    map[string]interface{}{"type": "integer"},
								"text": map[string]interface{}{"type": "string"},
								"conf": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"x", "y", "w", "h", "text"},
						},
					},
				})),
				"required": []string{"x", "y", "w", "h"},
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
