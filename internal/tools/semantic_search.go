package tools

import (
	"context"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/pinecone"
)

// Searcher is the subset of the vector index client used by the search tool.
type Searcher interface {
	Search(ctx context.Context, q pinecone.Query) ([]pinecone.Match, error)
}

// SemanticSearchTool searches the invoice vector index.
type SemanticSearchTool struct {
	searcher Searcher
}

// NewSemanticSearchTool creates a new semantic_search tool.
func NewSemanticSearchTool(searcher Searcher) *SemanticSearchTool {
	return &SemanticSearchTool{searcher: searcher}
}

func (t *SemanticSearchTool) Name() string {
	return "semantic_search"
}

func (t *SemanticSearchTool) Description() string {
	return "Search the indexed invoice documents by meaning, optionally filtered by category or source file"
}

func (t *SemanticSearchTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "query", Type: "string", Required: true, Description: "Natural language search query"},
		{Name: "namespace", Type: "string", Description: "Index namespace to search"},
		{Name: "top_k", Type: "int", Default: pinecone.DefaultTopK, Description: "Maximum number of results"},
		{Name: "category", Type: "string", Description: "Restrict results to one document category"},
		{Name: "filename", Type: "string", Description: "Restrict results to one source document"},
	}
}

func (t *SemanticSearchTool) Validate(args map[string]any) error {
	if err := ValidateArgs(t.Params(), args); err != nil {
		return err
	}
	if query, _ := GetString(args, "query"); strings.TrimSpace(query) == "" {
		return NewValidationError("query", "must not be empty")
	}
	return nil
}

func (t *SemanticSearchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	query, _ := GetString(args, "query")

	q := pinecone.Query{
		Text:      query,
		Namespace: GetStringDefault(args, "namespace", ""),
		TopK:      GetIntDefault(args, "top_k", 0),
	}

	filter := map[string]any{}
	if category := GetStringDefault(args, "category", ""); category != "" {
		filter["category"] = map[string]any{"$eq": category}
	}
	if filename := GetStringDefault(args, "filename", ""); filename != "" {
		filter["original_filename"] = map[string]any{"$eq": filename}
	}
	if len(filter) > 0 {
		q.Filter = filter
	}

	matches, err := t.searcher.Search(ctx, q)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	return NewSuccessResultWithData(pinecone.FormatMatches(matches), matches), nil
}

var _ Tool = (*SemanticSearchTool)(nil)
