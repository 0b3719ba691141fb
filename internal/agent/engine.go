package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/logging"
	"github.com/Handit-AI/invoice-copilot/internal/tools"
)

// Completer is the completion surface the engine depends on.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const decisionSystemPrompt = `You are the decision maker for an invoice analysis agent. On every turn you
pick exactly ONE next action: either a tool from the catalog below, or the
sentinel "finish" when the user's request has been satisfied.

Respond with a single YAML block and nothing else:

` + "```yaml" + `
tool: <tool name or "finish">
reason: <one sentence explaining this choice>
params:
  <parameter>: <value>
` + "```" + `

Rules:
- Use only tools from the catalog, with their declared parameters.
- When finishing, put the final answer for the user in the reason field.
- Prefer simple_report for direct data questions and edit_file for report
  or dashboard generation.

Available tools:
%s`

// Engine turns a request plus history into the next Decision.
// It is stateless; history is read-only input.
type Engine struct {
	llm      Completer
	registry *tools.Registry
}

// NewEngine creates a decision engine over the given tool registry.
func NewEngine(llm Completer, registry *tools.Registry) *Engine {
	return &Engine{llm: llm, registry: registry}
}

// Decide asks the model for the next step and validates its answer.
// A non-empty hint carries the previous parse failure so the model can
// correct itself on the re-prompt.
func (e *Engine) Decide(ctx context.Context, message string, history *HistoryLog, hint string) (Decision, error) {
	system := fmt.Sprintf(decisionSystemPrompt, e.registry.Catalog())

	var user strings.Builder
	fmt.Fprintf(&user, "User request: %s\n\n%s\n", message, history.Summary())
	if hint != "" {
		fmt.Fprintf(&user, "\nYour previous response was invalid: %s\nRespond again with a single valid YAML block.\n", hint)
	}
	user.WriteString("\nWhat is the next action?")

	raw, err := e.llm.Complete(ctx, system, user.String())
	if err != nil {
		return Decision{}, fmt.Errorf("decision request failed: %w", err)
	}

	decision, err := ParseDecision(raw, e.registry)
	if err != nil {
		logging.Warn("decision rejected", "error", err.Error())
		return Decision{}, err
	}

	logging.Debug("decision accepted", "tool", decision.Tool, "reason", decision.Reason)
	return decision, nil
}
