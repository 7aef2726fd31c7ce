package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/fundus-vessels/internal/dataset/datasettest"
)

// writeTestCase writes a 60x40 case with a vertical line at x=30.
func writeTestCase(t *testing.T, root, caseID string) {
	t.Helper()
	datasettest.WriteCase(t, root, caseID,
		datasettest.VerticalLine(60, 40, 30),
		datasettest.Solid(60, 40, color.White),
		datasettest.Solid(60, 40, color.Black))
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}
	resp := s.handleRequest(context.Background(), req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// resultContent extracts the content items of a successful tool call.
func resultContent(t *testing.T, resp *MCPResponse) []Content {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]Content)
	if !ok {
		t.Fatalf("content should be []Content, got %T", result["content"])
	}
	return content
}

func TestHandleToolsCall_CasePaths(t *testing.T) {
	root := t.TempDir()
	s := newTestServer(t, root)

	content := resultContent(t, callTool(t, s, "vessels_case_paths", map[string]interface{}{"case_id": "07_g"}))

	var got casePathsResult
	if err := json.Unmarshal([]byte(content[0].Text), &got); err != nil {
		t.Fatalf("text is not JSON: %v", err)
	}
	want := casePathsResult{
		CaseID:     "07_g",
		Photograph: filepath.Join(root, "Files/pictures", "07_g.jpg"),
		Mask:       filepath.Join(root, "Files/masks", "07_g_mask.tif"),
		Expert:     filepath.Join(root, "Files/expert_results", "07_g.tif"),
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestHandleToolsCall_CaseInfo(t *testing.T) {
	root := t.TempDir()
	writeTestCase(t, root, "01_h")
	s := newTestServer(t, root)

	content := resultContent(t, callTool(t, s, "vessels_case_info", map[string]interface{}{"case_id": "01_h"}))

	var got caseInfoResult
	if err := json.Unmarshal([]byte(content[0].Text), &got); err != nil {
		t.Fatalf("text is not JSON: %v", err)
	}
	if len(got.Images) != 3 {
		t.Fatalf("got %d images, want 3", len(got.Images))
	}
	for _, info := range got.Images {
		if info.Width != 60 || info.Height != 40 {
			t.Errorf("%s: got %dx%d, want 60x40", info.Role, info.Width, info.Height)
		}
	}
	if !got.SameSize || got.Dimensions != "60x40" {
		t.Errorf("dimension check: same=%v %q", got.SameSize, got.Dimensions)
	}
	if len(got.Missing) != 0 {
		t.Errorf("nothing should be missing: %v", got.Missing)
	}
}

func TestHandleToolsCall_CaseInfo_PartialAndMismatched(t *testing.T) {
	root := t.TempDir()
	datasettest.WriteCase(t, root, "02_h",
		datasettest.Solid(60, 40, color.Black),
		datasettest.Solid(30, 20, color.White),
		nil)
	s := newTestServer(t, root)

	content := resultContent(t, callTool(t, s, "vessels_case_info", map[string]interface{}{"case_id": "02_h"}))

	var got caseInfoResult
	if err := json.Unmarshal([]byte(content[0].Text), &got); err != nil {
		t.Fatalf("text is not JSON: %v", err)
	}
	if got.SameSize {
		t.Error("60x40 photograph and 30x20 mask should not be reported as the same size")
	}
	if _, ok := got.Missing["expert"]; !ok {
		t.Errorf("expert annotation should be listed as missing: %v", got.Missing)
	}
}

func TestHandleToolsCall_CaseInfo_NothingThere(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	resp := callTool(t, s, "vessels_case_info", map[string]interface{}{"case_id": "99_x"})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("got %+v, want a -32000 error", resp.Error)
	}
}

func TestHandleToolsCall_Recognize(t *testing.T) {
	root := t.TempDir()
	writeTestCase(t, root, "01_h")
	s := newTestServer(t, root)

	content := resultContent(t, callTool(t, s, "vessels_recognize", map[string]interface{}{"case_id": "01_h"}))

	if len(content) != 2 {
		t.Fatalf("got %d content items, want text and image", len(content))
	}
	if content[0].Type != "text" || content[1].Type != "image" {
		t.Fatalf("content types: %s, %s", content[0].Type, content[1].Type)
	}
	if content[1].MimeType != "image/png" {
		t.Errorf("mimeType: got %s", content[1].MimeType)
	}

	var summary recognizeResult
	if err := json.Unmarshal([]byte(content[0].Text), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if summary.Stage != "edges" || summary.Width != 60 || summary.Height != 40 {
		t.Errorf("summary: %+v", summary)
	}
	if summary.NonZeroPixels == 0 {
		t.Error("the line should produce edge pixels")
	}
	if len(summary.Timings) != 5 {
		t.Errorf("got %d timings, want 5", len(summary.Timings))
	}

	data, err := base64.StdEncoding.DecodeString(content[1].Data)
	if err != nil {
		t.Fatalf("image data is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image data is not a PNG: %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("got %T, want *image.Gray", img)
	}
	if gray.Bounds().Dx() != 60 || gray.Bounds().Dy() != 40 {
		t.Errorf("image size: %v", gray.Bounds())
	}
	if gray.GrayAt(30, 20).Y != 255 || gray.GrayAt(0, 20).Y != 0 {
		t.Error("edge image should be on at the line and off at the border")
	}
}

func TestHandleToolsCall_RecognizeStage(t *testing.T) {
	root := t.TempDir()
	writeTestCase(t, root, "01_h")
	s := newTestServer(t, root)

	content := resultContent(t, callTool(t, s, "vessels_recognize",
		map[string]interface{}{"case_id": "01_h", "stage": "gray"}))

	var summary recognizeResult
	if err := json.Unmarshal([]byte(content[0].Text), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Stage != "gray" {
		t.Errorf("stage: got %s, want gray", summary.Stage)
	}
	// Every gray pixel is at least the remapped floor of the zeroed channels.
	if summary.NonZeroPixels != 60*40 {
		t.Errorf("gray stage should have no zero pixels, got %d of %d", summary.NonZeroPixels, 60*40)
	}
}

func TestHandleToolsCall_RecognizeRegion(t *testing.T) {
	root := t.TempDir()
	writeTestCase(t, root, "01_h")
	s := newTestServer(t, root)

	content := resultContent(t, callTool(t, s, "vessels_recognize",
		map[string]interface{}{"case_id": "01_h", "region": "top-right", "scale": 2.0}))

	var summary recognizeResult
	if err := json.Unmarshal([]byte(content[0].Text), &summary); err != nil {
		t.Fatal(err)
	}
	// top-right of 60x40 is 30x20, doubled.
	if summary.Region != "top-right" || summary.Width != 60 || summary.Height != 40 {
		t.Errorf("summary: %+v", summary)
	}

	data, err := base64.StdEncoding.DecodeString(content[1].Data)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	// The line at x=30 is the left border of the region.
	if gray := img.(*image.Gray); gray.GrayAt(0, 10).Y != 255 || gray.GrayAt(59, 10).Y != 0 {
		t.Error("magnified region should show the line on its left edge only")
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	root := t.TempDir()
	writeTestCase(t, root, "01_h")
	s := newTestServer(t, root)

	tests := []struct {
		name     string
		tool     string
		args     map[string]interface{}
		wantCode int
		wantText string
	}{
		{"unknown tool", "vessels_frangi", map[string]interface{}{"case_id": "01_h"}, -32602, "unknown tool"},
		{"missing case id", "vessels_recognize", map[string]interface{}{}, -32602, "empty case"},
		{"path traversal", "vessels_case_paths", map[string]interface{}{"case_id": "../etc"}, -32602, "invalid case"},
		{"unknown stage", "vessels_recognize", map[string]interface{}{"case_id": "01_h", "stage": "blur"}, -32602, "unknown stage"},
		{"unknown region", "vessels_recognize", map[string]interface{}{"case_id": "01_h", "region": "nose"}, -32602, "unknown region"},
		{"missing case", "vessels_recognize", map[string]interface{}{"case_id": "02_h"}, -32000, "cannot decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("expected an error response")
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code: got %d, want %d", resp.Error.Code, tt.wantCode)
			}
			data, _ := resp.Error.Data.(string)
			if !strings.Contains(data, tt.wantText) {
				t.Errorf("data %q should mention %q", data, tt.wantText)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	}

	resp := s.handleRequest(context.Background(), req)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want -32602", resp.Error)
	}
}
