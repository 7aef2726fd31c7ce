package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/fundus-vessels/internal/dataset"
	"github.com/ironsheep/fundus-vessels/internal/display"
	"github.com/ironsheep/fundus-vessels/internal/vessels"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "vessels_recognize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// Content is one item of a tool result. Text items carry Text; image items
// carry base64 Data and its MimeType.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// withImage is returned by handlers whose result includes a picture. The
// summary becomes a text item and the image follows it.
type withImage struct {
	summary interface{}
	image   Content
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// vessels_recognize appends an {"type": "image"} item after the text.
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if errors.Is(err, errBadArguments) {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	var content []Content
	if img, ok := result.(*withImage); ok {
		content = []Content{{Type: "text", Text: mustMarshalJSON(img.summary)}, img.image}
	} else {
		content = []Content{{Type: "text", Text: mustMarshalJSON(result)}}
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// errBadArguments marks argument errors, which are reported as -32602 rather
// than as tool failures.
var errBadArguments = errors.New("bad arguments")

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "vessels_case_paths":
		return s.handleCasePaths(args)
	case "vessels_case_info":
		return s.handleCaseInfo(args)
	case "vessels_recognize":
		return s.handleRecognize(ctx, args)
	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errBadArguments, name)
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type caseArgs struct {
	CaseID string  `json:"case_id"`
	Stage  string  `json:"stage"`
	Region string  `json:"region"`
	Scale  float64 `json:"scale"`
}

func decodeCaseArgs(args json.RawMessage) (caseArgs, error) {
	var a caseArgs
	if len(args) == 0 {
		return a, fmt.Errorf("%w: missing arguments", errBadArguments)
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return a, fmt.Errorf("%w: %v", errBadArguments, err)
	}
	if err := dataset.ValidateCaseID(a.CaseID); err != nil {
		return a, fmt.Errorf("%w: %v", errBadArguments, err)
	}
	return a, nil
}

// === Dataset Handlers ===

type casePathsResult struct {
	CaseID     string `json:"case_id"`
	Photograph string `json:"photograph"`
	Mask       string `json:"mask"`
	Expert     string `json:"expert"`
}

func (s *Server) handleCasePaths(args json.RawMessage) (interface{}, error) {
	a, err := decodeCaseArgs(args)
	if err != nil {
		return nil, err
	}

	res := &casePathsResult{CaseID: a.CaseID}
	for role, dst := range map[dataset.Role]*string{
		dataset.Photograph:       &res.Photograph,
		dataset.FieldOfViewMask:  &res.Mask,
		dataset.ExpertAnnotation: &res.Expert,
	} {
		if *dst, err = s.loader.Path(a.CaseID, role); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type caseInfoResult struct {
	CaseID string               `json:"case_id"`
	Images []*dataset.ImageInfo `json:"images"`

	// Missing maps roles that could not be read to the reason.
	Missing map[string]string `json:"missing,omitempty"`

	SameSize   bool   `json:"same_size"`
	Dimensions string `json:"dimensions"`
}

func (s *Server) handleCaseInfo(args json.RawMessage) (interface{}, error) {
	a, err := decodeCaseArgs(args)
	if err != nil {
		return nil, err
	}

	res := &caseInfoResult{CaseID: a.CaseID, Images: []*dataset.ImageInfo{}}
	for _, role := range dataset.Roles {
		info, err := s.loader.Describe(a.CaseID, role)
		if err != nil {
			if res.Missing == nil {
				res.Missing = make(map[string]string)
			}
			res.Missing[role.String()] = err.Error()
			continue
		}
		res.Images = append(res.Images, info)
	}
	if len(res.Images) == 0 {
		return nil, fmt.Errorf("case %q: no readable images", a.CaseID)
	}

	res.SameSize = true
	first := res.Images[0]
	res.Dimensions = fmt.Sprintf("%dx%d", first.Width, first.Height)
	for _, info := range res.Images[1:] {
		if info.Width != first.Width || info.Height != first.Height {
			res.SameSize = false
			res.Dimensions = fmt.Sprintf("%s is %dx%d but %s is %dx%d",
				first.Role, first.Width, first.Height, info.Role, info.Width, info.Height)
			break
		}
	}
	return res, nil
}

// === Recognition Handlers ===

type stageTiming struct {
	Stage      string  `json:"stage"`
	DurationMs float64 `json:"duration_ms"`
}

type recognizeResult struct {
	CaseID        string        `json:"case_id"`
	Stage         string        `json:"stage"`
	Region        string        `json:"region,omitempty"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	NonZeroPixels int           `json:"nonzero_pixels"`
	Timings       []stageTiming `json:"timings"`
	TotalMs       float64       `json:"total_ms"`
}

func (s *Server) handleRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, err := decodeCaseArgs(args)
	if err != nil {
		return nil, err
	}
	stage, err := vessels.ParseStage(a.Stage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadArguments, err)
	}

	res, err := vessels.RecognizeCase(ctx, s.loader, a.CaseID,
		vessels.WithParams(s.params), vessels.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	g, err := res.Stage(stage)
	if err != nil {
		return nil, err
	}
	if a.Region != "" || a.Scale != 0 {
		r := g.Bounds()
		if a.Region != "" {
			if r, err = display.RegionRect(g.Width, g.Height, a.Region); err != nil {
				return nil, fmt.Errorf("%w: %v", errBadArguments, err)
			}
		}
		if g, err = display.Crop(g, r, a.Scale); err != nil {
			return nil, err
		}
	}
	data, err := display.EncodeBase64PNG(g)
	if err != nil {
		return nil, err
	}

	summary := &recognizeResult{
		CaseID:        a.CaseID,
		Stage:         string(stage),
		Region:        a.Region,
		Width:         g.Width,
		Height:        g.Height,
		NonZeroPixels: g.CountNonZero(),
		TotalMs:       millis(res.Total()),
	}
	for _, t := range res.Timings {
		summary.Timings = append(summary.Timings, stageTiming{Stage: string(t.Stage), DurationMs: millis(t.Duration)})
	}

	return &withImage{
		summary: summary,
		image:   Content{Type: "image", Data: data, MimeType: "image/png"},
	}, nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
