package tools

import (
	"context"
	"strings"
)

const otherRequestSystemPrompt = `You are the assistant for an invoice analysis workspace. The user's request
is outside the scope of invoice analysis and report generation. Reply with a
short, friendly message explaining what you can help with instead: analyzing
processed invoices, searching indexed documents, and generating reports.`

const otherRequestFallback = "I can help with analyzing your processed invoices, searching the indexed " +
	"documents, and generating reports from the data. Could you rephrase your request in those terms?"

// OtherRequestTool politely redirects out-of-scope requests.
type OtherRequestTool struct {
	llm Completer
}

// NewOtherRequestTool creates a new other_request tool.
func NewOtherRequestTool(llm Completer) *OtherRequestTool {
	return &OtherRequestTool{llm: llm}
}

func (t *OtherRequestTool) Name() string {
	return "other_request"
}

func (t *OtherRequestTool) Description() string {
	return "Respond to requests unrelated to invoice analysis or report generation"
}

func (t *OtherRequestTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "user_request", Type: "string", Required: true, Description: "The original out-of-scope request"},
	}
}

func (t *OtherRequestTool) Validate(args map[string]any) error {
	if err := ValidateArgs(t.Params(), args); err != nil {
		return err
	}
	if request, _ := GetString(args, "user_request"); strings.TrimSpace(request) == "" {
		return NewValidationError("user_request", "must not be empty")
	}
	return nil
}

func (t *OtherRequestTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	request, _ := GetString(args, "user_request")

	reply, err := t.llm.Complete(ctx, otherRequestSystemPrompt, request)
	if err != nil {
		// Redirection must not fail the whole request
		return NewSuccessResult(otherRequestFallback), nil
	}
	return NewSuccessResult(strings.TrimSpace(reply)), nil
}

var _ Tool = (*OtherRequestTool)(nil)
