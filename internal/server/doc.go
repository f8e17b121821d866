// Package server implements the JSON-RPC control server of puck-vision.
//
// It exposes one pipeline.Pipeline to a controlling process, typically the
// robot's behaviour layer or an MCP-compatible client used for calibration.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so they never interleave with responses.
//
// Supported methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Detection:
//   - find_objects: Select a color preset and return distances and directions
//
// Frames:
//   - push_frame: Make an image file the current frame
//   - save_image: Write the current frame to disk
//   - sample_color: Read a pixel of the current frame in RGB and 8-bit HSV
//
// Calibration:
//   - set_calibration: Toggle calibration mode
//   - get_parameters: Active preset, threshold bundle and camera geometry
//   - update_parameters: Select a preset and/or patch bundle fields atomically
//   - get_debug_views: Intermediate masks and a contour overlay as PNGs
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - code -32602 when the arguments were rejected (unknown color id, field
//     out of range, missing argument); server state is unchanged
//   - code -32000 for any other failure, such as an unwritable save path
//   - data: the Go error string
//
// # Usage
//
//	srv := server.New(p, logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatalw("server stopped", "error", err)
//	}
package server
