package tools

import (
	"context"
	"fmt"
	"strings"
)

const simpleReportSystemPrompt = `You are an invoice data analyst. Answer the user's question directly
using only the processed invoice data provided. Be concise and include concrete
numbers from the data. If the data cannot answer the question, say so.`

// SimpleReportTool answers data questions directly from the processed
// invoice data with a single completion call.
type SimpleReportTool struct {
	llm  Completer
	data DataProvider
}

// NewSimpleReportTool creates a new simple_report tool.
func NewSimpleReportTool(llm Completer, data DataProvider) *SimpleReportTool {
	return &SimpleReportTool{llm: llm, data: data}
}

func (t *SimpleReportTool) Name() string {
	return "simple_report"
}

func (t *SimpleReportTool) Description() string {
	return "Answer a question about the invoice data directly, without generating files"
}

func (t *SimpleReportTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "user_request", Type: "string", Required: true, Description: "The question to answer from the invoice data"},
	}
}

func (t *SimpleReportTool) Validate(args map[string]any) error {
	if err := ValidateArgs(t.Params(), args); err != nil {
		return err
	}
	if request, _ := GetString(args, "user_request"); strings.TrimSpace(request) == "" {
		return NewValidationError("user_request", "must not be empty")
	}
	return nil
}

func (t *SimpleReportTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	request, _ := GetString(args, "user_request")

	invoiceData, err := t.data.PromptData()
	if err != nil {
		return NewErrorResult(fmt.Sprintf("failed to load invoice data: %v", err)), nil
	}

	prompt := fmt.Sprintf("Processed invoice data:\n%s\n\nQuestion: %s", invoiceData, request)
	answer, err := t.llm.Complete(ctx, simpleReportSystemPrompt, prompt)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("report generation failed: %v", err)), nil
	}

	return NewSuccessResult(strings.TrimSpace(answer)), nil
}

var _ Tool = (*SimpleReportTool)(nil)
