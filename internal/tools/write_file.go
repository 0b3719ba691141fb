package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/workspace"
)

// WriteFileTool writes a file in the workspace.
type WriteFileTool struct {
	ws *workspace.Client
}

// NewWriteFileTool creates a new write_file tool.
func NewWriteFileTool(ws *workspace.Client) *WriteFileTool {
	return &WriteFileTool{ws: ws}
}

func (t *WriteFileTool) Name() string {
	return "write_file"
}

func (t *WriteFileTool) Description() string {
	return "Write content to a file in the workspace, creating parent directories as needed"
}

func (t *WriteFileTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "path", Type: "string", Required: true, Description: "File path relative to the workspace root"},
		{Name: "content", Type: "string", Required: true, Description: "Full file content to write"},
	}
}

func (t *WriteFileTool) Validate(args map[string]any) error {
	if err := ValidateArgs(t.Params(), args); err != nil {
		return err
	}
	if path, _ := GetString(args, "path"); strings.TrimSpace(path) == "" {
		return NewValidationError("path", "must not be empty")
	}
	return nil
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	content, _ := GetString(args, "content")

	ws, err := scopedWorkspace(ctx, t.ws)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	result, err := ws.Write(path, content)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	verb := "Updated"
	if result.Created {
		verb = "Created"
	}
	return NewSuccessResultWithData(
		fmt.Sprintf("%s %s (%d bytes)", verb, path, result.Bytes),
		result,
	), nil
}

var _ Tool = (*WriteFileTool)(nil)
