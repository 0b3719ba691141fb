package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Handit-AI/invoice-copilot/internal/logging"
	"github.com/Handit-AI/invoice-copilot/internal/tools"

	"github.com/google/uuid"
)

// State labels the loop's position in its lifecycle.
type State string

const (
	StateAwaitingDecision State = "AWAITING_DECISION"
	StateExecutingTool    State = "EXECUTING_TOOL"
	StateTerminated       State = "TERMINATED"
)

// Defaults for requests that leave the corresponding fields unset.
const (
	DefaultMaxIterations    = 10
	DefaultIterationTimeout = 120 * time.Second
)

// Request is one user request handed to the loop.
type Request struct {
	Message         string
	WorkspaceDir    string
	MaxIterations   int
	SessionID       string
	EnableDynamicUI bool
}

// Outcome is the terminal result of a run.
type Outcome struct {
	Success  bool
	Response string
	History  *HistoryLog
}

// Loop drives the iterate/decide/execute cycle for a single request.
// Execution is strictly sequential: one decision, then one tool call,
// then the next decision sees the updated history.
type Loop struct {
	engine           *Engine
	registry         *tools.Registry
	iterationTimeout time.Duration
}

// NewLoop creates an agent loop.
func NewLoop(engine *Engine, registry *tools.Registry, iterationTimeout time.Duration) *Loop {
	if iterationTimeout <= 0 {
		iterationTimeout = DefaultIterationTimeout
	}
	return &Loop{
		engine:           engine,
		registry:         registry,
		iterationTimeout: iterationTimeout,
	}
}

// Run executes the loop for one request. It always returns an Outcome with a
// non-empty response; errors along the way degrade the response rather than
// losing it.
func (l *Loop) Run(ctx context.Context, req Request) Outcome {
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	history := NewHistoryLog()
	log := logging.With("session", req.SessionID)
	log.Info("agent run started", "max_iterations", maxIterations, "dynamic_ui", req.EnableDynamicUI)

	// Request scope travels with the context so tools see it per call
	if req.WorkspaceDir != "" {
		ctx = tools.WithWorkspaceScope(ctx, req.WorkspaceDir)
	}
	ctx = tools.WithDynamicUI(ctx, req.EnableDynamicUI)

	consecutiveMalformed := 0
	hint := ""

	for iteration := 1; iteration <= maxIterations; iteration++ {
		// Cancellation is honored between iterations; an in-flight tool
		// call always completes and is recorded first.
		if ctx.Err() != nil {
			log.Warn("agent run cancelled", "iteration", iteration)
			return Outcome{
				Success:  false,
				Response: l.synthesizeSummary(history, "The request was cancelled."),
				History:  history,
			}
		}

		iterCtx, cancel := context.WithTimeout(ctx, l.iterationTimeout)
		decision, err := l.engine.Decide(iterCtx, req.Message, history, hint)
		if err != nil {
			cancel()
			var malformed *MalformedDecisionError
			if errors.As(err, &malformed) {
				consecutiveMalformed++
				hint = malformed.Detail
				history.Append(
					Decision{Tool: "(invalid)", Reason: "model output could not be parsed"},
					tools.NewErrorResult(malformed.Error()),
				)
				if consecutiveMalformed >= 2 {
					log.Error("agent run degraded", "reason", "repeated malformed decisions")
					return Outcome{
						Success: false,
						Response: l.synthesizeSummary(history,
							"I could not settle on a valid next step for this request."),
						History: history,
					}
				}
				continue
			}

			// An engine failure (backend error or iteration timeout) is a
			// recorded failure like any tool failure; the run continues on
			// its remaining budget.
			detail := err.Error()
			if errors.Is(err, context.DeadlineExceeded) {
				detail = "decision timed out"
			}
			log.Warn("decision request failed", "error", detail, "iteration", iteration)
			history.Append(
				Decision{Tool: "(engine)", Reason: "decision request failed"},
				tools.NewErrorResult(detail),
			)
			consecutiveMalformed = 0
			hint = ""
			continue
		}
		consecutiveMalformed = 0
		hint = ""

		if decision.IsTerminal() {
			cancel()
			log.Info("agent run finished", "iterations", iteration-1)
			return Outcome{
				Success:  true,
				Response: l.finalResponse(decision, history),
				History:  history,
			}
		}

		// Parser guarantees the tool exists
		tool, err := l.registry.Get(decision.Tool)
		if err != nil {
			cancel()
			history.Append(decision, tools.NewErrorResult(err.Error()))
			continue
		}

		log.Info("executing tool", "state", string(StateExecutingTool), "tool", decision.Tool, "iteration", iteration)
		start := time.Now()
		result := l.executeTool(iterCtx, tool, decision.Params)
		cancel()
		log.Info("tool finished",
			"tool", decision.Tool,
			"success", result.Success,
			"elapsed", time.Since(start).String())

		history.Append(decision, result)

		// Direct-answer tools short-circuit to a final response
		if result.Success && (decision.Tool == "simple_report" || decision.Tool == "other_request") {
			log.Info("agent run finished", "iterations", iteration)
			return Outcome{Success: true, Response: result.Content, History: history}
		}
	}

	log.Warn("agent run hit iteration budget", "max_iterations", maxIterations)
	return Outcome{
		Success:  true,
		Response: l.synthesizeSummary(history, "I reached the step limit for this request."),
		History:  history,
	}
}

// executeTool runs one tool call, converting timeouts and hard failures
// into recorded failures instead of aborting the run.
func (l *Loop) executeTool(ctx context.Context, tool tools.Tool, params map[string]any) tools.ToolResult {
	result, err := tool.Execute(ctx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return tools.NewErrorResult("tool execution timed out")
		}
		return tools.NewErrorResult(err.Error())
	}
	if !result.Success && result.Error == "" {
		result.Error = "tool reported failure without detail"
	}
	return result
}

// finalResponse builds the user-facing answer for a terminal decision:
// the decision's justification plus a rendering of the last successful
// tool result, when one exists.
func (l *Loop) finalResponse(decision Decision, history *HistoryLog) string {
	response := strings.TrimSpace(decision.Reason)
	if text, ok := decision.Params["response"].(string); ok && strings.TrimSpace(text) != "" {
		response = strings.TrimSpace(text)
	}
	if response == "" {
		return l.synthesizeSummary(history, "Done.")
	}
	if entry, ok := history.LastSuccess(); ok {
		if content := strings.TrimSpace(entry.Result.Content); content != "" {
			return response + "\n\n" + excerptText(content)
		}
	}
	return response
}

// synthesizeSummary builds a best-effort answer from the recorded history.
// The result is never empty.
func (l *Loop) synthesizeSummary(history *HistoryLog, preamble string) string {
	var sb strings.Builder
	sb.WriteString(preamble)

	if entry, ok := history.LastSuccess(); ok {
		fmt.Fprintf(&sb, " The last completed step was %s: %s", entry.Decision.Tool, entry.Decision.Reason)
		if content := strings.TrimSpace(entry.Result.Content); content != "" {
			fmt.Fprintf(&sb, "\n\n%s", excerptText(content))
		}
	} else if history.Len() > 0 {
		sb.WriteString(" No step completed successfully.")
	}

	return sb.String()
}
