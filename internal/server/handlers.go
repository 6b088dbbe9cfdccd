package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/tesseract-words/internal/hocr"
	"github.com/ironsheep/tesseract-words/internal/imaging"
	"github.com/ironsheep/tesseract-words/internal/ocr"
	"github.com/ironsheep/tesseract-words/internal/reflow"
	"github.com/ironsheep/tesseract-words/internal/words"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ocr_words", "hocr_reflow").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
// Malformed hOCR and strict reflow failures carry their structured details
// in the error's data field.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", errorData(err))
	}
	s.logger.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool complete")

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
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Recognition
	case "ocr_words":
		return s.handleOCRWords(ctx, args)
	case "ocr_region_text":
		return s.handleOCRRegionText(ctx, args)
	case "ocr_overlay":
		return s.handleOCROverlay(ctx, args)
	case "ocr_info":
		return s.handleOCRInfo()

	// Saved hOCR
	case "hocr_parse":
		return s.handleHOCRParse(args)
	case "hocr_reflow":
		return s.handleHOCRReflow(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorData returns the JSON-RPC error data for err.
func errorData(err error) interface{} {
	var perr *hocr.ParseError
	if errors.As(err, &perr) {
		return map[string]interface{}{
			"error": err.Error(),
			"kind":  perr.Kind,
			"word":  perr.Word,
			"value": perr.Value,
		}
	}
	var rerr *reflow.Error
	if errors.As(err, &rerr) {
		return map[string]interface{}{
			"error":  err.Error(),
			"record": rerr.Record,
		}
	}
	return err.Error()
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument blocks ===

type ocrArgs struct {
	Path     string `json:"path"`
	Name     string `json:"name,omitempty"`
	Language string `json:"lang,omitempty"`
	PSM      *int   `json:"psm,omitempty"`
	Config   string `json:"config,omitempty"`
}

type regionArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (a regionArgs) rect() words.Rect {
	return words.Rect{X: a.X, Y: a.Y, W: a.W, H: a.H}
}

type reflowArgs struct {
	Strict     *bool   `json:"strict,omitempty"`
	LineFactor float64 `json:"line_factor,omitempty"`
}

func (a reflowArgs) apply(base reflow.Options) reflow.Options {
	if a.Strict != nil {
		base.Strict = *a.Strict
	}
	if a.LineFactor != 0 {
		base.LineFactor = a.LineFactor
	}
	return base
}

// extractorFor returns a copy of the server's extractor with per-call
// overrides applied.
func (s *Server) extractorFor(a ocrArgs, r reflowArgs) (*ocr.Extractor, error) {
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	x := *s.extractor
	opts := x.Options
	if a.Language != "" {
		opts.Language = a.Language
	}
	if a.PSM != nil {
		if *a.PSM < 0 || *a.PSM > 13 {
			return nil, fmt.Errorf("invalid page segmentation mode %d", *a.PSM)
		}
		opts.PageSegMode = *a.PSM
	}
	if a.Config != "" {
		var err error
		if opts, err = ocr.ParseConfigString(opts, a.Config); err != nil {
			return nil, err
		}
	}
	x.Options = opts
	x.Reflow = r.apply(x.Reflow)
	return &x, nil
}

// === Image Information ===

type imageArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Recognition ===

type wordsResult struct {
	Count  int         `json:"count"`
	Bounds words.Rect  `json:"bounds"`
	Words  words.Table `json:"words"`
}

func newWordsResult(table words.Table) *wordsResult {
	if table == nil {
		table = words.Table{}
	}
	return &wordsResult{Count: len(table), Bounds: table.Bounds(), Words: table}
}

func (s *Server) handleOCRWords(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ocrArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	x, err := s.extractorFor(a, reflowArgs{})
	if err != nil {
		return nil, err
	}
	table, err := x.WordsFromFile(ctx, a.Path, a.Name)
	if err != nil {
		return nil, err
	}
	return newWordsResult(table), nil
}

type regionTextArgs struct {
	ocrArgs
	regionArgs
	reflowArgs
}

type regionTextResult struct {
	Text   string `json:"text"`
	Region string `json:"region"`
}

func (s *Server) handleOCRRegionText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	x, err := s.extractorFor(a.ocrArgs, a.reflowArgs)
	if err != nil {
		return nil, err
	}
	region := a.rect()
	text, err := x.RegionTextFromFile(ctx, a.Path, a.Name, region)
	if err != nil {
		return nil, err
	}
	return &regionTextResult{Text: text, Region: region.String()}, nil
}

type overlayArgs struct {
	ocrArgs
	regionArgs
	Labels bool    `json:"labels,omitempty"`
	Crop   bool    `json:"crop,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
	Out    string  `json:"out,omitempty"`
}

type overlayResult struct {
	*imaging.OverlayResult
	Text  string `json:"text"`
	Saved string `json:"saved,omitempty"`
}

func (s *Server) handleOCROverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	x, err := s.extractorFor(a.ocrArgs, reflowArgs{})
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	table, err := x.WordsFromFile(ctx, a.Path, a.Name)
	if err != nil {
		return nil, err
	}

	region := a.rect()
	opts := imaging.DefaultOverlayOptions()
	opts.Labels = a.Labels
	ov, err := imaging.Overlay(img, table, region, opts)
	if err != nil {
		return nil, err
	}
	text, err := x.Reflow.Apply(table, region)
	if err != nil {
		return nil, err
	}

	res := &overlayResult{OverlayResult: ov, Text: text}
	if a.Crop {
		c, err := imaging.CropRect(ov.Image, region, a.Scale)
		if err != nil {
			return nil, err
		}
		ov.Width, ov.Height, ov.ImageBase64 = c.Width, c.Height, c.ImageBase64
		if a.Out != "" {
			if err := imaging.SaveOverlay(a.Out, c.Image); err != nil {
				return nil, err
			}
			res.Saved = a.Out
		}
		return res, nil
	}
	if a.Out != "" {
		if err := imaging.SaveOverlay(a.Out, ov.Image); err != nil {
			return nil, err
		}
		res.Saved = a.Out
	}
	return res, nil
}

type infoResult struct {
	Engine     ocr.Info `json:"engine"`
	Language   string   `json:"language"`
	PSM        int      `json:"psm"`
	LineFactor float64  `json:"line_factor"`
	Strict     bool     `json:"strict"`
	HOCRDir    string   `json:"hocr_dir,omitempty"`
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	x := s.extractor
	return &infoResult{
		Engine:     x.Engine.Info(),
		Language:   x.Options.Language,
		PSM:        x.Options.PageSegMode,
		LineFactor: x.Reflow.LineFactor,
		Strict:     x.Reflow.Strict,
		HOCRDir:    x.HOCRDir,
	}, nil
}

// === Saved hOCR ===

type hocrSourceArgs struct {
	HOCR  string       `json:"hocr,omitempty"`
	Path  string       `json:"path,omitempty"`
	Words *words.Table `json:"words,omitempty"`
}

// table resolves exactly one of the hOCR markup, an hOCR file or an inline
// word table.
func (a hocrSourceArgs) table() (words.Table, error) {
	n := 0
	for _, set := range []bool{a.HOCR != "", a.Path != "", a.Words != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, errors.New("exactly one of hocr, path or words is required")
	}

	switch {
	case a.HOCR != "":
		return hocr.ParseString(a.HOCR)
	case a.Path != "":
		return hocr.ParseFile(a.Path)
	default:
		return *a.Words, nil
	}
}

func (s *Server) handleHOCRParse(args json.RawMessage) (interface{}, error) {
	var a struct {
		HOCR string `json:"hocr,omitempty"`
		Path string `json:"path,omitempty"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	table, err := hocrSourceArgs{HOCR: a.HOCR, Path: a.Path}.table()
	if err != nil {
		return nil, err
	}
	return newWordsResult(table), nil
}

type hocrReflowArgs struct {
	hocrSourceArgs
	regionArgs
	reflowArgs
}

func (s *Server) handleHOCRReflow(args json.RawMessage) (interface{}, error) {
	var a hocrReflowArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	table, err := a.table()
	if err != nil {
		return nil, err
	}
	region := a.rect()
	text, err := a.apply(s.extractor.Reflow).Apply(table, region)
	if err != nil {
		return nil, err
	}
	return &regionTextResult{Text: text, Region: region.String()}, nil
}
