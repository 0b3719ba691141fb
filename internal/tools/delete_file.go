package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/workspace"
)

// DeleteFileTool removes a file from the workspace.
type DeleteFileTool struct {
	ws *workspace.Client
}

// NewDeleteFileTool creates a new delete_file tool.
func NewDeleteFileTool(ws *workspace.Client) *DeleteFileTool {
	return &DeleteFileTool{ws: ws}
}

func (t *DeleteFileTool) Name() string {
	return "delete_file"
}

func (t *DeleteFileTool) Description() string {
	return "Delete a file from the workspace"
}

func (t *DeleteFileTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "path", Type: "string", Required: true, Description: "File path relative to the workspace root"},
	}
}

func (t *DeleteFileTool) Validate(args map[string]any) error {
	if err := ValidateArgs(t.Params(), args); err != nil {
		return err
	}
	if path, _ := GetString(args, "path"); strings.TrimSpace(path) == "" {
		return NewValidationError("path", "must not be empty")
	}
	return nil
}

func (t *DeleteFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")

	ws, err := scopedWorkspace(ctx, t.ws)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	if err := ws.Delete(path); err != nil {
		return NewErrorResult(err.Error()), nil
	}
	return NewSuccessResult(fmt.Sprintf("Deleted %s", path)), nil
}

var _ Tool = (*DeleteFileTool)(nil)
