package tools

import (
	"github.com/Handit-AI/invoice-copilot/internal/workspace"
)

// Deps carries the shared dependencies tools are built from.
type Deps struct {
	LLM       Completer
	Documents DataProvider
	Workspace *workspace.Client
	Searcher  Searcher
}

// DefaultRegistry creates a registry with the standard tool set.
// Registration order is part of the agent's observable contract: the
// decision prompt lists tools in exactly this order.
func DefaultRegistry(deps Deps) (*Registry, error) {
	r := NewRegistry()

	ordered := []Tool{
		NewEditFileTool(deps.LLM, deps.Documents, deps.Workspace),
		NewSimpleReportTool(deps.LLM, deps.Documents),
		NewOtherRequestTool(deps.LLM),
		NewSemanticSearchTool(deps.Searcher),
		NewReadFileTool(deps.Workspace),
		NewWriteFileTool(deps.Workspace),
		NewListDirTool(deps.Workspace),
		NewDeleteFileTool(deps.Workspace),
		NewGrepSearchTool(deps.Workspace),
	}
	for _, tool := range ordered {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}
