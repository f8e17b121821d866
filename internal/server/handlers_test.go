package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/puck-vision/internal/imaging"
	"github.com/ironsheep/puck-vision/internal/params"
	"github.com/ironsheep/puck-vision/internal/pipeline"
)

// createTestImageFile writes a black PNG with a filled disk of color c and
// returns its path.
func createTestImageFile(t *testing.T, width, height, cx, cy, r int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, c)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool issues a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
}

func wantErrorCode(t *testing.T, resp *MCPResponse, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("Expected error code %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Errorf("Error code: got %d, want %d (%v)", resp.Error.Code, code, resp.Error.Data)
	}
}

func TestHandleToolsCall_FindObjects(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 320, 240, 160, 120, 20, color.RGBA{0, 0, 255, 255})

	decodeResult(t, callTool(t, s, "push_frame", map[string]interface{}{"path": path}), &map[string]interface{}{})

	var objs pipeline.Objects
	decodeResult(t, callTool(t, s, "find_objects", map[string]interface{}{"color": 2}), &objs)

	if objs.Preset != params.Blue {
		t.Errorf("Preset: got %v, want BLUE", objs.Preset)
	}
	if len(objs.Distances) != 1 || len(objs.Directions) != 1 {
		t.Fatalf("got %d distances and %d directions, want 1 each", len(objs.Distances), len(objs.Directions))
	}
	if d := objs.Directions[0]; d < -0.01 || d > 0.01 {
		t.Errorf("direction of a centered puck: got %v, want ~0", d)
	}
	want := s.pipeline.Estimator().Distance(objs.Centroids[0].Y)
	if objs.Distances[0] != want {
		t.Errorf("distance: got %v, want %v", objs.Distances[0], want)
	}
}

func TestHandleToolsCall_FindObjects_Empty(t *testing.T) {
	s := newTestServer(t)

	var raw map[string]json.RawMessage
	decodeResult(t, callTool(t, s, "find_objects", map[string]interface{}{"color": 0}), &raw)

	if string(raw["distances"]) != "[]" || string(raw["directions"]) != "[]" {
		t.Errorf("expected empty arrays, got distances=%s directions=%s", raw["distances"], raw["directions"])
	}
}

func TestHandleToolsCall_FindObjects_InvalidColor(t *testing.T) {
	s := newTestServer(t)
	before := s.pipeline.Store().Snapshot()

	for _, args := range []interface{}{
		map[string]interface{}{"color": 4},
		map[string]interface{}{"color": -1},
		map[string]interface{}{},
		map[string]interface{}{"color": "green"},
	} {
		wantErrorCode(t, callTool(t, s, "find_objects", args), -32602)
	}

	if after := s.pipeline.Store().Snapshot(); after != before {
		t.Errorf("store changed: %+v -> %+v", before, after)
	}
}

func TestHandleToolsCall_PushFrame_Resizes(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 64, 48, 10, 10, 4, color.White)

	var res pushFrameResult
	decodeResult(t, callTool(t, s, "push_frame", map[string]interface{}{"path": path}), &res)

	if res.Source.Width != 64 || res.Source.Height != 48 {
		t.Errorf("source size: got %dx%d, want 64x48", res.Source.Width, res.Source.Height)
	}
	if res.Width != 320 || res.Height != 240 {
		t.Errorf("frame size: got %dx%d, want 320x240", res.Width, res.Height)
	}
	if f := s.pipeline.Frame(); f.Width != 320 || f.Height != 240 {
		t.Errorf("pipeline frame: got %dx%d", f.Width, f.Height)
	}
}

func TestHandleToolsCall_PushFrame_Errors(t *testing.T) {
	s := newTestServer(t)
	frame := s.pipeline.Frame()

	wantErrorCode(t, callTool(t, s, "push_frame", map[string]interface{}{}), -32602)
	wantErrorCode(t, callTool(t, s, "push_frame",
		map[string]interface{}{"path": filepath.Join(t.TempDir(), "missing.png")}), -32000)

	if s.pipeline.Frame() != frame {
		t.Error("failed push replaced the frame")
	}
}

func TestHandleToolsCall_SaveImage(t *testing.T) {
	s := newTestServer(t)
	src := createTestImageFile(t, 320, 240, 50, 50, 10, color.RGBA{255, 255, 0, 255})
	decodeResult(t, callTool(t, s, "push_frame", map[string]interface{}{"path": src}), &map[string]interface{}{})

	dst := filepath.Join(t.TempDir(), "saved.png")
	var res map[string]string
	decodeResult(t, callTool(t, s, "save_image", map[string]interface{}{"file_name": dst}), &res)
	if res["saved"] != dst {
		t.Errorf("saved: got %q, want %q", res["saved"], dst)
	}

	saved, err := imaging.LoadFrame(dst, 0, 0)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	r, g, b := saved.At(50, 50)
	if r != 255 || g != 255 || b != 0 {
		t.Errorf("pixel (50,50): got %d,%d,%d, want yellow", r, g, b)
	}

	wantErrorCode(t, callTool(t, s, "save_image",
		map[string]interface{}{"file_name": filepath.Join(t.TempDir(), "no", "dir.png")}), -32000)
	wantErrorCode(t, callTool(t, s, "save_image", map[string]interface{}{}), -32602)
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	s := newTestServer(t)
	src := createTestImageFile(t, 320, 240, 100, 100, 10, color.RGBA{0, 255, 0, 255})
	decodeResult(t, callTool(t, s, "push_frame", map[string]interface{}{"path": src}), &map[string]interface{}{})

	var res imaging.ColorResult
	decodeResult(t, callTool(t, s, "sample_color", map[string]interface{}{"x": 100, "y": 100}), &res)

	if res.Hex != "#00FF00" {
		t.Errorf("Hex: got %s, want #00FF00", res.Hex)
	}
	if res.HSV.H != 85 {
		t.Errorf("HSV.H: got %d, want 85", res.HSV.H)
	}

	wantErrorCode(t, callTool(t, s, "sample_color", map[string]interface{}{"x": 320, "y": 0}), -32602)
}

func TestHandleToolsCall_SetCalibration(t *testing.T) {
	s := newTestServer(t)

	wantErrorCode(t, callTool(t, s, "get_debug_views", map[string]interface{}{}), -32602)

	var res map[string]bool
	decodeResult(t, callTool(t, s, "set_calibration", map[string]interface{}{"enabled": true}), &res)
	if !res["calibration"] || !s.pipeline.Calibration() {
		t.Fatal("calibration not enabled")
	}

	var views struct {
		Views []imaging.EncodedImage `json:"views"`
	}
	decodeResult(t, callTool(t, s, "get_debug_views", map[string]interface{}{"scale": 0.25}), &views)
	if len(views.Views) != 7 {
		t.Fatalf("got %d views, want 7", len(views.Views))
	}
	for _, v := range views.Views {
		if v.Width != 80 || v.Height != 60 {
			t.Errorf("%s: got %dx%d, want 80x60", v.Name, v.Width, v.Height)
		}
	}

	wantErrorCode(t, callTool(t, s, "get_debug_views", map[string]interface{}{"scale": -1}), -32602)
	wantErrorCode(t, callTool(t, s, "set_calibration", map[string]interface{}{}), -32602)
}

func TestHandleToolsCall_Parameters(t *testing.T) {
	s := newTestServer(t)

	var got parametersResult
	decodeResult(t, callTool(t, s, "get_parameters", nil), &got)
	if got.Preset != params.Red || got.Version != 1 {
		t.Errorf("initial: got %v v%d, want RED v1", got.Preset, got.Version)
	}
	if got.Camera.Width != 320 || got.Projection != "linear" {
		t.Errorf("camera: got %+v %s", got.Camera, got.Projection)
	}

	decodeResult(t, callTool(t, s, "update_parameters", map[string]interface{}{
		"preset": "green",
		"fields": map[string]interface{}{"hue_width": 40, "value_threshold": 70},
	}), &got)
	if got.Preset != params.Green || got.Bundle.HueWidth != 40 || got.Bundle.ValueThreshold != 70 {
		t.Errorf("after update: got %+v", got)
	}
	if got.Bundle.HueStart != 69 {
		t.Errorf("hue_start: got %d, want the GREEN default 69", got.Bundle.HueStart)
	}
	if got.Snapshot != s.pipeline.Store().Snapshot() {
		t.Error("reply does not match the store")
	}
}

func TestHandleToolsCall_UpdateParameters_Rejected(t *testing.T) {
	s := newTestServer(t)
	before := s.pipeline.Store().Snapshot()

	wantErrorCode(t, callTool(t, s, "update_parameters", map[string]interface{}{
		"fields": map[string]interface{}{"hue_width": 300},
	}), -32602)
	wantErrorCode(t, callTool(t, s, "update_parameters", map[string]interface{}{
		"preset": "PURPLE",
	}), -32602)
	wantErrorCode(t, callTool(t, s, "update_parameters", map[string]interface{}{}), -32602)
	wantErrorCode(t, callTool(t, s, "update_parameters", map[string]interface{}{
		"preset": "BLUE",
		"fields": map[string]interface{}{"open_radius_2": 99},
	}), -32602)

	if after := s.pipeline.Store().Snapshot(); after != before {
		t.Errorf("store changed: %+v -> %+v", before, after)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name": 5}`),
	})
	wantErrorCode(t, resp, -32602)
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	wantErrorCode(t, callTool(t, s, "rotate_image", map[string]interface{}{}), -32602)
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)
	_, err := s.executeTool(context.Background(), "save_image", json.RawMessage(`{invalid`))
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
