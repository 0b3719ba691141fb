package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/workspace"
)

// GrepSearchTool searches file contents in the workspace.
type GrepSearchTool struct {
	ws *workspace.Client
}

// NewGrepSearchTool creates a new grep_search tool.
func NewGrepSearchTool(ws *workspace.Client) *GrepSearchTool {
	return &GrepSearchTool{ws: ws}
}

func (t *GrepSearchTool) Name() string {
	return "grep_search"
}

func (t *GrepSearchTool) Description() string {
	return "Search workspace file contents with a regular expression"
}

func (t *GrepSearchTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "pattern", Type: "string", Required: true, Description: "Regular expression to search for"},
		{Name: "glob", Type: "string", Description: "Glob pattern restricting the files searched, e.g. **/*.json"},
	}
}

func (t *GrepSearchTool) Validate(args map[string]any) error {
	if err := ValidateArgs(t.Params(), args); err != nil {
		return err
	}
	if pattern, _ := GetString(args, "pattern"); strings.TrimSpace(pattern) == "" {
		return NewValidationError("pattern", "must not be empty")
	}
	return nil
}

func (t *GrepSearchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	pattern, _ := GetString(args, "pattern")
	glob := GetStringDefault(args, "glob", "")

	ws, err := scopedWorkspace(ctx, t.ws)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	matches, err := ws.Grep(pattern, glob)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	if len(matches) == 0 {
		return NewSuccessResult("No matches found."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matches:\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(&sb, "%s:%d: %s\n", m.Path, m.Line, strings.TrimSpace(m.Text))
	}
	return NewSuccessResultWithData(strings.TrimRight(sb.String(), "\n"), matches), nil
}

var _ Tool = (*GrepSearchTool)(nil)
