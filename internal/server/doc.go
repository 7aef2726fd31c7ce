// Package server implements the MCP (Model Context Protocol) server that
// exposes vessel recognition to MCP clients.
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
//   - vessels_case_paths: Resolve the three image paths of a case
//   - vessels_case_info: Dimensions, format and size of each image of a case
//   - vessels_recognize: Run the pipeline and return one stage as a PNG image
//
// vessels_recognize answers with two content items: a JSON summary (size,
// number of edge pixels, per-stage timings) and the stage itself as
// {"type": "image", "mimeType": "image/png"}, which the client displays.
//
// # State
//
// The server keeps no state between calls. Every recognition reloads the case
// from disk and nothing is written back.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses with:
//   - code: -32601 (unknown method), -32602 (bad or missing arguments, unknown
//     tool or stage) or -32000 (tool execution failure, e.g. unreadable image)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	loader := dataset.NewLoader(dataset.DefaultPaths(), logger)
//	srv := server.New(loader, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
