package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/workspace"
)

// ListDirTool lists a workspace directory.
type ListDirTool struct {
	ws *workspace.Client
}

// NewListDirTool creates a new list_dir tool.
func NewListDirTool(ws *workspace.Client) *ListDirTool {
	return &ListDirTool{ws: ws}
}

func (t *ListDirTool) Name() string {
	return "list_dir"
}

func (t *ListDirTool) Description() string {
	return "List the files and directories in a workspace directory"
}

func (t *ListDirTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "path", Type: "string", Default: ".", Description: "Directory path relative to the workspace root"},
	}
}

func (t *ListDirTool) Validate(args map[string]any) error {
	return ValidateArgs(t.Params(), args)
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := GetStringDefault(args, "path", ".")

	ws, err := scopedWorkspace(ctx, t.ws)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	entries, err := ws.List(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	if len(entries) == 0 {
		return NewSuccessResultWithData("Directory is empty.", entries), nil
	}

	var sb strings.Builder
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(&sb, "%s/\n", e.Name)
		} else {
			fmt.Fprintf(&sb, "%s (%d bytes)\n", e.Name, e.Size)
		}
	}
	return NewSuccessResultWithData(strings.TrimRight(sb.String(), "\n"), entries), nil
}

var _ Tool = (*ListDirTool)(nil)
