package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
	"github.com/ironsheep/shape-tools-mcp/internal/pipeline"
	"github.com/ironsheep/shape-tools-mcp/internal/shapeio"
)

// errInvalidArguments marks tool failures caused by the caller's arguments.
// They are reported with JSON-RPC code -32602 instead of -32000.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "shapes_load", "shapes_process").
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
// Argument errors return code -32602; other tool failures return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, errInvalidArguments) {
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
	// Input Inspection
	case "shapes_load":
		return s.handleShapesLoad(args)

	// Analysis
	case "shapes_classify":
		return s.handleShapesClassify(args)
	case "shapes_symmetry":
		return s.handleShapesSymmetry(args)
	case "shapes_gaps":
		return s.handleShapesGaps(args)

	// Processing
	case "shapes_process":
		return s.handleShapesProcess(ctx, args)

	// Rendering
	case "shapes_render":
		return s.handleShapesRender(ctx, args)
	case "shapes_render_diff":
		return s.handleShapesRenderDiff(ctx, args)

	// Export
	case "shapes_export_csv":
		return s.handleShapesExportCSV(ctx, args)
	case "shapes_export_svg":
		return s.handleShapesExportSVG(ctx, args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArguments, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to a pretty-printed JSON string. A value
// that fails to marshal yields "".
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
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// === Input Handling ===

// sourceArgs is embedded by every tool's arguments.
type sourceArgs struct {
	Path string `json:"path"`
	CSV  string `json:"csv"`
}

// load returns the drawing named by a, reading files through the cache.
func (s *Server) load(a sourceArgs) (geometry.PathCollection, error) {
	switch {
	case a.Path != "" && a.CSV != "":
		return nil, fmt.Errorf("%w: provide either path or csv, not both", errInvalidArguments)
	case a.Path != "":
		return s.cache.Load(a.Path)
	case a.CSV != "":
		return shapeio.ParseCSV(a.CSV)
	default:
		return nil, fmt.Errorf("%w: one of path or csv is required", errInvalidArguments)
	}
}

func (s *Server) loadArgs(args json.RawMessage) (geometry.PathCollection, error) {
	var a sourceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.load(a)
}

// === Input Inspection Handlers ===

type shapesLoadResult struct {
	Source string `json:"source"`
	*shapeio.Summary
}

func (s *Server) handleShapesLoad(args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	coll, err := s.load(a)
	if err != nil {
		return nil, err
	}
	source := "inline"
	if a.Path != "" {
		source = a.Path
	}
	return &shapesLoadResult{Source: source, Summary: shapeio.Summarize(coll)}, nil
}

// === Analysis Handlers ===

type polylineClassification struct {
	Index          int                      `json:"index"`
	Source         pipeline.Source          `json:"source"`
	Vertices       int                      `json:"vertices"`
	Classification detection.Classification `json:"classification"`
}

type classifyResult struct {
	Rules     []string                 `json:"rules"`
	Counts    map[string]int           `json:"counts"`
	Polylines []polylineClassification `json:"polylines"`
}

func (s *Server) handleShapesClassify(args json.RawMessage) (interface{}, error) {
	coll, err := s.loadArgs(args)
	if err != nil {
		return nil, err
	}

	res := &classifyResult{
		Rules:  s.classifier.Rules(),
		Counts: make(map[string]int),
	}
	sources := pipeline.Sources(coll)
	for i, p := range coll.Flatten() {
		c := s.classifier.Classify(p)
		res.Counts[c.Kind.String()]++
		res.Polylines = append(res.Polylines, polylineClassification{
			Index:          i,
			Source:         sources[i],
			Vertices:       len(p),
			Classification: c,
		})
	}
	return res, nil
}

type polylineSymmetry struct {
	Index    int                `json:"index"`
	Source   pipeline.Source    `json:"source"`
	Symmetry detection.Symmetry `json:"symmetry"`
}

func (s *Server) handleShapesSymmetry(args json.RawMessage) (interface{}, error) {
	coll, err := s.loadArgs(args)
	if err != nil {
		return nil, err
	}

	sources := pipeline.Sources(coll)
	out := make([]polylineSymmetry, 0, len(sources))
	for i, p := range coll.Flatten() {
		out = append(out, polylineSymmetry{Index: i, Source: sources[i], Symmetry: detection.DetectSymmetry(p)})
	}
	return map[string]interface{}{"polylines": out}, nil
}

type polylineGaps struct {
	Index      int             `json:"index"`
	Source     pipeline.Source `json:"source"`
	MeanEdge   float64         `json:"mean_edge"`
	Gaps       []int           `json:"gaps"`
	GapLengths []float64       `json:"gap_lengths"`
}

func (s *Server) handleShapesGaps(args json.RawMessage) (interface{}, error) {
	coll, err := s.loadArgs(args)
	if err != nil {
		return nil, err
	}

	sources := pipeline.Sources(coll)
	out := make([]polylineGaps, 0, len(sources))
	for i, p := range coll.Flatten() {
		edges := p.EdgeLengths()
		g := polylineGaps{
			Index:      i,
			Source:     sources[i],
			MeanEdge:   geometry.Mean(edges),
			Gaps:       []int{},
			GapLengths: []float64{},
		}
		for _, e := range detection.FindGaps(p) {
			g.Gaps = append(g.Gaps, e)
			g.GapLengths = append(g.GapLengths, edges[e])
		}
		out = append(out, g)
	}
	return map[string]interface{}{"polylines": out}, nil
}

// === Processing Handlers ===

type shapesProcessArgs struct {
	sourceArgs
	IncludeOutput *bool `json:"include_output"`
}

type processResult struct {
	Counts   map[string]int          `json:"counts"`
	Inserted int                     `json:"inserted"`
	Failures int                     `json:"failures"`
	Output   geometry.PathCollection `json:"output,omitempty"`
	Reports  []pipeline.Report       `json:"reports"`
}

func (s *Server) handleShapesProcess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a shapesProcessArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	coll, err := s.load(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	result, err := s.pipeline.Process(ctx, coll)
	if err != nil {
		return nil, err
	}

	res := &processResult{
		Counts:  make(map[string]int),
		Reports: result.Reports,
	}
	for _, r := range result.Reports {
		res.Counts[r.Classification.Kind.String()]++
		res.Inserted += r.Inserted
		if r.Err != "" {
			res.Failures++
		}
	}
	if a.IncludeOutput == nil || *a.IncludeOutput {
		res.Output = result.Output
	}
	return res, nil
}

// process loads the drawing and runs the pipeline on it.
func (s *Server) process(ctx context.Context, a sourceArgs) (before, after geometry.PathCollection, err error) {
	before, err = s.load(a)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.pipeline.Process(ctx, before)
	if err != nil {
		return nil, nil, err
	}
	return before, result.Output, nil
}

// === Rendering Handlers ===

type renderArgs struct {
	sourceArgs
	Title string  `json:"title"`
	Size  int     `json:"size"`
	Scale float64 `json:"scale"`
}

func (s *Server) renderOptions(a renderArgs) (imaging.RenderOptions, error) {
	if a.Size < 0 || a.Scale < 0 {
		return imaging.RenderOptions{}, fmt.Errorf("%w: size and scale must not be negative", errInvalidArguments)
	}
	if a.Size == 0 {
		a.Size = s.cfg.RenderSize
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	return imaging.RenderOptions{Title: a.Title, Size: a.Size, Scale: a.Scale}, nil
}

type shapesRenderArgs struct {
	renderArgs
	Stage string `json:"stage"`
}

func (s *Server) handleShapesRender(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a shapesRenderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.renderOptions(a.renderArgs)
	if err != nil {
		return nil, err
	}

	var coll geometry.PathCollection
	switch a.Stage {
	case "original":
		coll, err = s.load(a.sourceArgs)
	case "", "processed":
		_, coll, err = s.process(ctx, a.sourceArgs)
	default:
		return nil, fmt.Errorf("%w: unknown stage %q", errInvalidArguments, a.Stage)
	}
	if err != nil {
		return nil, err
	}
	return imaging.Render(coll, opts)
}

func (s *Server) handleShapesRenderDiff(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.renderOptions(a)
	if err != nil {
		return nil, err
	}
	before, after, err := s.process(ctx, a.sourceArgs)
	if err != nil {
		return nil, err
	}
	return imaging.RenderDiff(before, after, opts)
}

// === Export Handlers ===

type exportResult struct {
	OutputPath string `json:"output_path,omitempty"`
	Bytes      int    `json:"bytes"`
	Groups     int    `json:"groups"`
	Content    string `json:"content,omitempty"`
}

// export renders the processed drawing with write, then stores it at
// outputPath or returns it inline.
func (s *Server) export(ctx context.Context, a sourceArgs, outputPath string, write func(io.Writer, geometry.PathCollection) error) (*exportResult, error) {
	_, out, err := s.process(ctx, a)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := write(&buf, out); err != nil {
		return nil, err
	}

	res := &exportResult{Bytes: buf.Len(), Groups: len(out)}
	if outputPath == "" {
		res.Content = buf.String()
		return res, nil
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	res.OutputPath = outputPath
	return res, nil
}

type shapesExportCSVArgs struct {
	sourceArgs
	OutputPath string `json:"output_path"`
}

func (s *Server) handleShapesExportCSV(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a shapesExportCSVArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.export(ctx, a.sourceArgs, a.OutputPath, shapeio.WriteCSV)
}

type shapesExportSVGArgs struct {
	sourceArgs
	OutputPath  string  `json:"output_path"`
	Margin      float64 `json:"margin"`
	StrokeWidth float64 `json:"stroke_width"`
}

func (s *Server) handleShapesExportSVG(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a shapesExportSVGArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts := shapeio.SVGOptions{Margin: a.Margin, StrokeWidth: a.StrokeWidth}
	return s.export(ctx, a.sourceArgs, a.OutputPath, func(w io.Writer, coll geometry.PathCollection) error {
		return shapeio.WriteSVG(w, coll, opts)
	})
}
