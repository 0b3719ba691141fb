package tools

import (
	"context"

	"github.com/Handit-AI/invoice-copilot/internal/workspace"
)

type ctxKey int

const (
	workspaceScopeKey ctxKey = iota
	dynamicUIKey
)

// WithWorkspaceScope confines file tools to a subdirectory of the workspace
// root for the duration of a request.
func WithWorkspaceScope(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workspaceScopeKey, dir)
}

// WorkspaceScope returns the per-request workspace subdirectory, or "" when
// the request runs against the root.
func WorkspaceScope(ctx context.Context) string {
	dir, _ := ctx.Value(workspaceScopeKey).(string)
	return dir
}

// WithDynamicUI marks the request as allowing dynamic UI generation.
func WithDynamicUI(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dynamicUIKey, enabled)
}

// DynamicUIEnabled reports whether the request allows dynamic UI generation.
func DynamicUIEnabled(ctx context.Context) bool {
	enabled, _ := ctx.Value(dynamicUIKey).(bool)
	return enabled
}

// scopedWorkspace resolves the workspace client for this request. The scope
// directory is validated by the sandbox, so an escaping scope fails the tool
// call rather than widening it.
func scopedWorkspace(ctx context.Context, ws *workspace.Client) (*workspace.Client, error) {
	if dir := WorkspaceScope(ctx); dir != "" {
		return ws.Scoped(dir)
	}
	return ws, nil
}
