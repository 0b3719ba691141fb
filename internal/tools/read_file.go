package tools

import (
	"context"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/workspace"
)

// ReadFileTool reads a file from the workspace.
type ReadFileTool struct {
	ws *workspace.Client
}

// NewReadFileTool creates a new read_file tool.
func NewReadFileTool(ws *workspace.Client) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file in the workspace"
}

func (t *ReadFileTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "path", Type: "string", Required: true, Description: "File path relative to the workspace root"},
		{Name: "offset", Type: "int", Description: "Line number to start reading from (0-based)"},
		{Name: "limit", Type: "int", Description: "Maximum number of lines to read"},
	}
}

func (t *ReadFileTool) Validate(args map[string]any) error {
	if err := ValidateArgs(t.Params(), args); err != nil {
		return err
	}
	if path, _ := GetString(args, "path"); strings.TrimSpace(path) == "" {
		return NewValidationError("path", "must not be empty")
	}
	return nil
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	offset := GetIntDefault(args, "offset", 0)
	limit := GetIntDefault(args, "limit", 0)

	ws, err := scopedWorkspace(ctx, t.ws)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	content, err := ws.Read(path, offset, limit)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	lines := strings.Count(content, "\n") + 1
	return NewSuccessResultWithData(content, map[string]any{
		"path":  path,
		"lines": lines,
	}), nil
}

var _ Tool = (*ReadFileTool)(nil)
