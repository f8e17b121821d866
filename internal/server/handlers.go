package server

import (
	"context"
	"encoding/json"

	"github.com/ironsheep/puck-vision/internal/fault"
	"github.com/ironsheep/puck-vision/internal/geometry"
	"github.com/ironsheep/puck-vision/internal/imaging"
	"github.com/ironsheep/puck-vision/internal/params"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "find_objects", "save_image").
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
// Rejected arguments (fault.ErrInvalidArgument) map to -32602, every other
// failure to -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var p ToolCallParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, p.Name, p.Arguments)
	if err != nil {
		s.logger.Debugw("tool failed", "tool", p.Name, "error", err)
		if fault.Is(err, fault.ErrInvalidArgument) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
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
	// Detection
	case "find_objects":
		return s.handleFindObjects(ctx, args)

	// Frames
	case "push_frame":
		return s.handlePushFrame(args)
	case "save_image":
		return s.handleSaveImage(args)
	case "sample_color":
		return s.handleSampleColor(args)

	// Calibration
	case "set_calibration":
		return s.handleSetCalibration(args)
	case "get_parameters":
		return s.handleGetParameters()
	case "update_parameters":
		return s.handleUpdateParameters(args)
	case "get_debug_views":
		return s.handleGetDebugViews(ctx, args)

	default:
		return nil, fault.InvalidArgument("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as the zero
// value; malformed ones are an invalid argument.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fault.InvalidArgument("decode arguments: %v", err)
	}
	return nil
}

// === Detection Handlers ===

type findObjectsArgs struct {
	Color *int `json:"color"`
}

func (s *Server) handleFindObjects(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a findObjectsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Color == nil {
		return nil, fault.InvalidArgument("color is required")
	}
	return s.pipeline.FindObjects(ctx, *a.Color)
}

// === Frame Handlers ===

type pushFrameArgs struct {
	Path string `json:"path"`
}

type pushFrameResult struct {
	// Source describes the file as read from disk.
	Source *imaging.FrameInfo `json:"source"`
	// Width and Height are the frame size after normalization.
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handlePushFrame(args json.RawMessage) (interface{}, error) {
	var a pushFrameArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fault.InvalidArgument("path is required")
	}

	info, err := imaging.StatFrame(a.Path)
	if err != nil {
		return nil, err
	}
	cam := s.pipeline.Estimator().Camera()
	f, err := imaging.LoadFrame(a.Path, cam.Width, cam.Height)
	if err != nil {
		return nil, err
	}
	s.pipeline.PushFrame(f)

	return &pushFrameResult{Source: info, Width: f.Width, Height: f.Height}, nil
}

type saveImageArgs struct {
	FileName string `json:"file_name"`
}

func (s *Server) handleSaveImage(args json.RawMessage) (interface{}, error) {
	var a saveImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.FileName == "" {
		return nil, fault.InvalidArgument("file_name is required")
	}
	if err := s.pipeline.SaveImage(a.FileName); err != nil {
		return nil, err
	}
	return map[string]interface{}{"saved": a.FileName}, nil
}

type sampleColorArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.SampleColor(s.pipeline.Frame(), a.X, a.Y)
}

// === Calibration Handlers ===

type setCalibrationArgs struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleSetCalibration(args json.RawMessage) (interface{}, error) {
	var a setCalibrationArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Enabled == nil {
		return nil, fault.InvalidArgument("enabled is required")
	}
	s.pipeline.SetCalibration(*a.Enabled)
	return map[string]interface{}{"calibration": s.pipeline.Calibration()}, nil
}

type parametersResult struct {
	params.Snapshot
	Calibration bool            `json:"calibration"`
	Camera      geometry.Camera `json:"camera"`
	Projection  string          `json:"projection"`
}

func (s *Server) parameters(snap params.Snapshot) *parametersResult {
	est := s.pipeline.Estimator()
	return &parametersResult{
		Snapshot:    snap,
		Calibration: s.pipeline.Calibration(),
		Camera:      est.Camera(),
		Projection:  est.Projection().String(),
	}
}

func (s *Server) handleGetParameters() (interface{}, error) {
	return s.parameters(s.pipeline.Store().Snapshot()), nil
}

type updateParametersArgs struct {
	Preset *params.Preset `json:"preset"`
	Fields params.Patch   `json:"fields"`
}

func (s *Server) handleUpdateParameters(args json.RawMessage) (interface{}, error) {
	var a updateParametersArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Preset == nil && a.Fields.Empty() {
		return nil, fault.InvalidArgument("nothing to update: give a preset or fields")
	}
	snap, err := s.pipeline.Store().Calibrate(a.Preset, a.Fields)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("parameters updated", "preset", snap.Preset, "version", snap.Version)
	return s.parameters(snap), nil
}

type debugViewsArgs struct {
	Scale float64 `json:"scale"`
}

func (s *Server) handleGetDebugViews(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a debugViewsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Scale < 0 || a.Scale > 4 {
		return nil, fault.InvalidArgument("scale must be in (0, 4], got %v", a.Scale)
	}
	views, err := s.pipeline.DebugViews(ctx, a.Scale)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"views": views}, nil
}
