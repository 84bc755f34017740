// Package server implements the MCP (Model Context Protocol) server for the
// shape tools.
//
// This package provides a JSON-RPC 2.0 server that exposes polyline
// classification, regularization and curve completion through the MCP
// protocol, so that a client can clean up hand-drawn shapes step by step.
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
// Every tool takes its drawing either as a file path ("path") or as inline
// CSV text ("csv"), with one path_id,polyline_id,x,y row per point.
//
// Input Inspection:
//   - shapes_load: Counts and bounding box
//
// Analysis:
//   - shapes_classify: Shape family per polyline
//   - shapes_symmetry: Mirrored vertex pair per polyline
//   - shapes_gaps: Over-long edges per polyline
//
// Processing:
//   - shapes_process: Full pipeline with per-polyline reports
//
// Rendering:
//   - shapes_render: PNG plot of the original or processed drawing
//   - shapes_render_diff: Pixel difference of original and processed
//
// Export:
//   - shapes_export_csv: Processed points as i,j,x,y rows
//   - shapes_export_svg: Processed groups as closed polygons
//
// # Caching
//
// Drawings loaded by path are cached for the lifetime of the process and
// reused across tool calls. Inline CSV is parsed on every call.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for bad arguments, -32000 for other tool failures
//   - message: Human-readable error description
//   - data: The Go error string
package server
