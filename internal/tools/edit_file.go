package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/workspace"
)

// Completer is the completion surface the generation tools depend on.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// DataProvider supplies processed invoice data for prompts.
type DataProvider interface {
	PromptData() (string, error)
}

const editFileSystemPrompt = `You are an expert frontend developer generating report and dashboard files.
You will receive the current file content (possibly empty), processed invoice data,
and instructions describing the desired result.

Respond with the COMPLETE new file content and nothing else.
Do not wrap the output in markdown code fences.
Use the invoice data provided; never invent numbers.`

const dynamicUIInstructions = `Dynamic UI is enabled for this request: when producing HTML, include
interactive charts (Chart.js loaded from a CDN) and summary cards computed
from the invoice data.`

const staticOutputInstructions = `Dynamic UI is disabled for this request: produce static content only,
with no scripts and no external resources.`

// EditFileTool regenerates a workspace file from instructions and the
// processed invoice data, writing the model's output through the sandbox.
type EditFileTool struct {
	llm  Completer
	data DataProvider
	ws   *workspace.Client
}

// NewEditFileTool creates a new edit_file tool.
func NewEditFileTool(llm Completer, data DataProvider, ws *workspace.Client) *EditFileTool {
	return &EditFileTool{llm: llm, data: data, ws: ws}
}

func (t *EditFileTool) Name() string {
	return "edit_file"
}

func (t *EditFileTool) Description() string {
	return "Generate or update a report file (HTML, Markdown, CSV) from the processed invoice data"
}

func (t *EditFileTool) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "target_file", Type: "string", Required: true, Description: "File to create or rewrite, relative to the workspace root"},
		{Name: "instructions", Type: "string", Required: true, Description: "What the generated file should contain"},
		{Name: "chart_description", Type: "string", Description: "Charts or visualizations to include"},
	}
}

func (t *EditFileTool) Validate(args map[string]any) error {
	if err := ValidateArgs(t.Params(), args); err != nil {
		return err
	}
	if target, _ := GetString(args, "target_file"); strings.TrimSpace(target) == "" {
		return NewValidationError("target_file", "must not be empty")
	}
	if instructions, _ := GetString(args, "instructions"); strings.TrimSpace(instructions) == "" {
		return NewValidationError("instructions", "must not be empty")
	}
	return nil
}

func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	target, _ := GetString(args, "target_file")
	instructions, _ := GetString(args, "instructions")
	chartDesc := GetStringDefault(args, "chart_description", "")

	ws, err := scopedWorkspace(ctx, t.ws)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	invoiceData, err := t.data.PromptData()
	if err != nil {
		return NewErrorResult(fmt.Sprintf("failed to load invoice data: %v", err)), nil
	}

	current, err := ws.Read(target, 0, 0)
	if err != nil && !errors.Is(err, workspace.ErrNotFound) {
		return NewErrorResult(err.Error()), nil
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Target file: %s\n\n", target)
	fmt.Fprintf(&prompt, "Instructions:\n%s\n\n", instructions)
	if chartDesc != "" {
		fmt.Fprintf(&prompt, "Charts to include:\n%s\n\n", chartDesc)
	}
	fmt.Fprintf(&prompt, "Processed invoice data:\n%s\n\n", invoiceData)
	if current != "" {
		fmt.Fprintf(&prompt, "Current file content:\n%s\n", current)
	} else {
		prompt.WriteString("The file does not exist yet.\n")
	}

	system := editFileSystemPrompt
	if DynamicUIEnabled(ctx) {
		system += "\n\n" + dynamicUIInstructions
	} else {
		system += "\n\n" + staticOutputInstructions
	}

	generated, err := t.llm.Complete(ctx, system, prompt.String())
	if err != nil {
		return NewErrorResult(fmt.Sprintf("generation failed: %v", err)), nil
	}

	content := stripCodeFences(generated)
	if strings.TrimSpace(content) == "" {
		return NewErrorResult("model returned empty file content"), nil
	}

	result, err := ws.Write(target, content)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	verb := "Updated"
	if result.Created {
		verb = "Generated"
	}
	return NewSuccessResultWithData(fmt.Sprintf("%s %s (%d bytes)", verb, target, result.Bytes), result), nil
}

// stripCodeFences removes a single leading/trailing markdown fence pair if the
// model wrapped its output despite instructions.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return s
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

var _ Tool = (*EditFileTool)(nil)
