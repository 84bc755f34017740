package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareAndCircle is a drawn square (path 0) and a 12-point circle of
// radius 5 around (20, 0) (path 1).
func squareAndCircle() string {
	var b strings.Builder
	b.WriteString("0,0,0,0\n0,0,4,0\n0,0,4,4\n0,0,0,4\n")
	for k := 0; k < 12; k++ {
		theta := 2 * math.Pi * float64(k) / 12
		fmt.Fprintf(&b, "1,0,%g,%g\n", 20+5*math.Cos(theta), 5*math.Sin(theta))
	}
	return b.String()
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	paramsJSON, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	require.NotNil(t, resp, "handleRequest returned nil")
	return resp
}

// decodeContent unmarshals the JSON text of a successful tool response.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "Result should be a map")
	content, ok := result["content"].([]map[string]interface{})
	require.True(t, ok, "unexpected content: %v", result["content"])
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	text, _ := content[0]["text"].(string)
	require.NoError(t, json.Unmarshal([]byte(text), v), text)
}

func wantErrorCode(t *testing.T, resp *MCPResponse, code int) {
	t.Helper()
	require.NotNil(t, resp.Error, "expected error code %d, got result %v", code, resp.Result)
	assert.Equal(t, code, resp.Error.Code, resp.Error.Data)
}

func TestHandleToolsCall_ShapesLoadInline(t *testing.T) {
	s := New(testConfig())
	resp := callTool(t, s, "shapes_load", map[string]interface{}{"csv": squareAndCircle()})

	var got struct {
		Source    string  `json:"source"`
		Paths     int     `json:"paths"`
		Polylines int     `json:"polylines"`
		Points    int     `json:"points"`
		MaxX      float64 `json:"max_x"`
	}
	decodeContent(t, resp, &got)

	assert.Equal(t, "inline", got.Source)
	assert.Equal(t, 2, got.Paths)
	assert.Equal(t, 2, got.Polylines)
	assert.Equal(t, 16, got.Points)
	assert.InDelta(t, 25, got.MaxX, 1e-9)
	assert.Zero(t, s.cache.Len(), "inline input should not be cached")
}

func TestHandleToolsCall_ShapesLoadPath(t *testing.T) {
	s := New(testConfig())
	path := filepath.Join(t.TempDir(), "shapes.csv")
	require.NoError(t, os.WriteFile(path, []byte(squareAndCircle()), 0o644))

	var got struct {
		Source string `json:"source"`
		Paths  int    `json:"paths"`
	}
	decodeContent(t, callTool(t, s, "shapes_load", map[string]interface{}{"path": path}), &got)

	assert.Equal(t, path, got.Source)
	assert.Equal(t, 2, got.Paths)
	assert.Equal(t, 1, s.cache.Len())
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New(testConfig())

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
		code int
	}{
		{"no source", "shapes_load", map[string]interface{}{}, -32602},
		{"both sources", "shapes_load", map[string]interface{}{"csv": "0,0,0,0\n", "path": "/x.csv"}, -32602},
		{"wrong type", "shapes_load", map[string]interface{}{"csv": 42}, -32602},
		{"unknown tool", "shapes_nothing", map[string]interface{}{"csv": "0,0,0,0\n"}, -32602},
		{"bad stage", "shapes_render", map[string]interface{}{"csv": "0,0,0,0\n", "stage": "middle"}, -32602},
		{"negative size", "shapes_render", map[string]interface{}{"csv": "0,0,0,0\n", "size": -5}, -32602},
		{"malformed csv", "shapes_classify", map[string]interface{}{"csv": "0,0,x,1\n"}, -32000},
		{"missing file", "shapes_process", map[string]interface{}{"path": filepath.Join(t.TempDir(), "none.csv")}, -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantErrorCode(t, callTool(t, s, tt.tool, tt.args), tt.code)
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(testConfig())
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`[1,2,3]`),
	})
	wantErrorCode(t, resp, -32602)
}

func TestMustMarshalJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", mustMarshalJSON(map[string]int{"a": 1}))
	assert.Equal(t, "", mustMarshalJSON(math.NaN()))
	assert.Equal(t, "", mustMarshalJSON(make(chan int)))
}

func TestHandleToolsCall_ShapesClassify(t *testing.T) {
	s := New(testConfig())

	var got struct {
		Rules     []string       `json:"rules"`
		Counts    map[string]int `json:"counts"`
		Polylines []struct {
			Index          int `json:"index"`
			Vertices       int `json:"vertices"`
			Classification struct {
				Kind     string     `json:"kind"`
				Centroid [2]float64 `json:"centroid"`
				Radius   float64    `json:"radius"`
			} `json:"classification"`
		} `json:"polylines"`
	}
	decodeContent(t, callTool(t, s, "shapes_classify", map[string]interface{}{"csv": squareAndCircle()}), &got)

	require.Len(t, got.Polylines, 2)
	assert.Equal(t, "rectangle", got.Polylines[0].Classification.Kind)

	circle := got.Polylines[1].Classification
	assert.Equal(t, "circle", circle.Kind)
	assert.InDelta(t, 5, circle.Radius, 1e-9)
	assert.InDelta(t, 20, circle.Centroid[0], 1e-9)

	assert.Equal(t, 1, got.Counts["rectangle"])
	assert.Equal(t, 1, got.Counts["circle"])
	assert.Len(t, got.Rules, 4)
}

func TestHandleToolsCall_ShapesSymmetry(t *testing.T) {
	s := New(testConfig())

	var got struct {
		Polylines []struct {
			Symmetry struct {
				Symmetric bool   `json:"symmetric"`
				Pair      [2]int `json:"pair"`
			} `json:"symmetry"`
		} `json:"polylines"`
	}
	decodeContent(t, callTool(t, s, "shapes_symmetry", map[string]interface{}{"csv": "0,0,0,0\n0,0,4,0\n0,0,4,4\n0,0,0,4\n"}), &got)

	require.Len(t, got.Polylines, 1)
	sym := got.Polylines[0].Symmetry
	assert.True(t, sym.Symmetric)
	assert.Equal(t, [2]int{0, 2}, sym.Pair)
}

func TestHandleToolsCall_ShapesGaps(t *testing.T) {
	s := New(testConfig())

	var got struct {
		Polylines []struct {
			MeanEdge   float64   `json:"mean_edge"`
			Gaps       []int     `json:"gaps"`
			GapLengths []float64 `json:"gap_lengths"`
		} `json:"polylines"`
	}
	input := "0,0,0,0\n0,0,1,0\n0,0,2,0\n0,0,10,0\n0,0,11,0\n1,0,0,0\n1,0,1,1\n"
	decodeContent(t, callTool(t, s, "shapes_gaps", map[string]interface{}{"csv": input}), &got)

	require.Len(t, got.Polylines, 2)
	first := got.Polylines[0]
	assert.Equal(t, []int{2}, first.Gaps)
	assert.Equal(t, []float64{8}, first.GapLengths)
	assert.Equal(t, 2.75, first.MeanEdge)
	assert.Empty(t, got.Polylines[1].Gaps, "single edge should have no gaps")
}

type processPayload struct {
	Counts   map[string]int `json:"counts"`
	Inserted int            `json:"inserted"`
	Failures int            `json:"failures"`
	Output   []struct {
		ID        float64        `json:"id"`
		Polylines [][][2]float64 `json:"polylines"`
	} `json:"output"`
	Reports []struct {
		Index          int `json:"index"`
		OutputVertices int `json:"output_vertices"`
	} `json:"reports"`
}

func TestHandleToolsCall_ShapesProcess(t *testing.T) {
	s := New(testConfig())

	var got processPayload
	decodeContent(t, callTool(t, s, "shapes_process", map[string]interface{}{"csv": squareAndCircle()}), &got)

	require.Len(t, got.Output, 2)
	require.Len(t, got.Reports, 2)

	square := got.Output[0].Polylines[0]
	want := [][2]float64{{4, 2}, {2, 4}, {0, 2}, {2, 0}}
	require.Len(t, square, len(want))
	for i := range want {
		assert.InDelta(t, want[i][0], square[i][0], 1e-9, "square vertex %d", i)
		assert.InDelta(t, want[i][1], square[i][1], 1e-9, "square vertex %d", i)
	}
	assert.Len(t, got.Output[1].Polylines[0], 100)
	assert.Equal(t, 1.0, got.Output[1].ID)
	assert.Equal(t, 1, got.Counts["rectangle"])
	assert.Equal(t, 1, got.Counts["circle"])
	assert.Zero(t, got.Failures)
	assert.Zero(t, got.Inserted)
}

func TestHandleToolsCall_ShapesProcessWithoutOutput(t *testing.T) {
	s := New(testConfig())

	var got processPayload
	decodeContent(t, callTool(t, s, "shapes_process", map[string]interface{}{
		"csv":            squareAndCircle(),
		"include_output": false,
	}), &got)

	assert.Nil(t, got.Output, "output should be omitted")
	assert.Len(t, got.Reports, 2)
}

func TestHandleToolsCall_ShapesRender(t *testing.T) {
	s := New(testConfig())

	for _, stage := range []string{"original", "processed", ""} {
		t.Run("stage "+stage, func(t *testing.T) {
			var got struct {
				Width       int    `json:"width"`
				Height      int    `json:"height"`
				ImageBase64 string `json:"image_base64"`
				MimeType    string `json:"mime_type"`
				Legend      []struct {
					Hex string `json:"hex"`
				} `json:"legend"`
			}
			decodeContent(t, callTool(t, s, "shapes_render", map[string]interface{}{
				"csv":   squareAndCircle(),
				"stage": stage,
			}), &got)

			// The configured render size is 160.
			assert.Equal(t, 160, got.Width)
			assert.Equal(t, 160, got.Height)
			assert.Equal(t, "image/png", got.MimeType)
			assert.NotEmpty(t, got.ImageBase64)
			assert.Len(t, got.Legend, 2)
		})
	}
}

func TestHandleToolsCall_ShapesRenderDiff(t *testing.T) {
	s := New(testConfig())

	var got struct {
		Width         int     `json:"width"`
		ChangedPixels int     `json:"changed_pixels"`
		ChangedRatio  float64 `json:"changed_ratio"`
	}
	decodeContent(t, callTool(t, s, "shapes_render_diff", map[string]interface{}{
		"csv":   squareAndCircle(),
		"size":  200,
		"scale": 0.5,
	}), &got)

	assert.Equal(t, 100, got.Width)
	// The square is rotated by regularization, so the drawing changes.
	assert.Positive(t, got.ChangedPixels)
	assert.Greater(t, got.ChangedRatio, 0.0)
}

type exportPayload struct {
	OutputPath string `json:"output_path"`
	Bytes      int    `json:"bytes"`
	Groups     int    `json:"groups"`
	Content    string `json:"content"`
}

func TestHandleToolsCall_ShapesExportCSVInline(t *testing.T) {
	s := New(testConfig())

	var got exportPayload
	decodeContent(t, callTool(t, s, "shapes_export_csv", map[string]interface{}{"csv": squareAndCircle()}), &got)

	lines := strings.Split(strings.TrimSpace(got.Content), "\n")
	require.Len(t, lines, 104)
	assert.Equal(t, "0,0,4,2", lines[0])
	assert.True(t, strings.HasPrefix(lines[4], "1,0,"), lines[4])
	assert.True(t, strings.HasPrefix(lines[103], "1,99,"), lines[103])
	assert.Equal(t, 2, got.Groups)
	assert.Equal(t, len(got.Content), got.Bytes)
	assert.Empty(t, got.OutputPath)
}

func TestHandleToolsCall_ShapesExportCSVFile(t *testing.T) {
	s := New(testConfig())
	outPath := filepath.Join(t.TempDir(), "out.csv")

	var got exportPayload
	decodeContent(t, callTool(t, s, "shapes_export_csv", map[string]interface{}{
		"csv":         squareAndCircle(),
		"output_path": outPath,
	}), &got)

	assert.Equal(t, outPath, got.OutputPath)
	assert.Empty(t, got.Content)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Len(t, data, got.Bytes)
}

func TestHandleToolsCall_ShapesExportSVG(t *testing.T) {
	s := New(testConfig())

	var got exportPayload
	decodeContent(t, callTool(t, s, "shapes_export_svg", map[string]interface{}{
		"csv":          squareAndCircle(),
		"stroke_width": 2,
	}), &got)

	assert.Contains(t, got.Content, "<svg")
	assert.Equal(t, 2, strings.Count(got.Content, "<path"))
	assert.Equal(t, 2, strings.Count(got.Content, "fill:none"))
}

func TestHandleToolsCall_ExportBadOutputPath(t *testing.T) {
	s := New(testConfig())
	resp := callTool(t, s, "shapes_export_svg", map[string]interface{}{
		"csv":         squareAndCircle(),
		"output_path": filepath.Join(t.TempDir(), "missing", "dir", "out.svg"),
	})
	wantErrorCode(t, resp, -32000)
}
