package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Handit-AI/invoice-copilot/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTool is a canned tool for loop tests. It records the request
// scope it observes on each call.
type scriptedTool struct {
	name      string
	params    []tools.ParamSpec
	result    tools.ToolResult
	calls     int
	scope     string
	dynamicUI bool
}

func (t *scriptedTool) Name() string              { return t.name }
func (t *scriptedTool) Description() string       { return "scripted " + t.name }
func (t *scriptedTool) Params() []tools.ParamSpec { return t.params }
func (t *scriptedTool) Validate(args map[string]any) error {
	return tools.ValidateArgs(t.params, args)
}
func (t *scriptedTool) Execute(ctx context.Context, args map[string]any) (tools.ToolResult, error) {
	t.calls++
	t.scope = tools.WorkspaceScope(ctx)
	t.dynamicUI = tools.DynamicUIEnabled(ctx)
	if t.result.Success || t.result.Error != "" {
		return t.result, nil
	}
	return tools.NewSuccessResult("ok"), nil
}

// scriptedCompleter replays canned model responses in order, repeating the
// last one when exhausted.
type scriptedCompleter struct {
	responses []string
	calls     int
}

func (c *scriptedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	i := c.calls
	c.calls++
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	return c.responses[i], nil
}

func newLoop(t *testing.T, registry *tools.Registry, responses ...string) (*Loop, *scriptedCompleter) {
	t.Helper()
	llm := &scriptedCompleter{responses: responses}
	engine := NewEngine(llm, registry)
	return NewLoop(engine, registry, time.Minute), llm
}

func decisionYAML(tool, reason, params string) string {
	s := "```yaml\ntool: " + tool + "\nreason: " + reason + "\n"
	if params != "" {
		s += "params:\n" + params + "\n"
	}
	return s + "```"
}

func TestLoopEmptyWorkspaceScenario(t *testing.T) {
	registry := tools.NewRegistry()
	listDir := &scriptedTool{
		name:   "list_dir",
		params: []tools.ParamSpec{{Name: "path", Type: "string"}},
		result: tools.NewSuccessResult("Directory is empty."),
	}
	require.NoError(t, registry.Register(listDir))

	loop, _ := newLoop(t, registry,
		decisionYAML("list_dir", "inspect the workspace", "  path: ."),
		decisionYAML("finish", "The workspace is empty.", ""),
	)

	outcome := loop.Run(context.Background(), Request{Message: "what files exist?"})
	assert.True(t, outcome.Success)
	// The final answer carries the justification plus the last successful result
	assert.Equal(t, "The workspace is empty.\n\nDirectory is empty.", outcome.Response)
	assert.Equal(t, 1, outcome.History.Len())
	assert.Equal(t, 1, listDir.calls)
}

func TestLoopHistoryNeverExceedsBudget(t *testing.T) {
	registry := tools.NewRegistry()
	tool := &scriptedTool{name: "list_dir", params: []tools.ParamSpec{{Name: "path", Type: "string"}}}
	require.NoError(t, registry.Register(tool))

	// The model never finishes
	loop, _ := newLoop(t, registry, decisionYAML("list_dir", "look again", "  path: ."))

	outcome := loop.Run(context.Background(), Request{Message: "loop forever", MaxIterations: 4})
	assert.True(t, outcome.Success)
	assert.NotEmpty(t, outcome.Response)
	assert.Equal(t, 4, outcome.History.Len())
	assert.Equal(t, 4, tool.calls)
}

func TestLoopSingleIterationBudget(t *testing.T) {
	registry := tools.NewRegistry()
	tool := &scriptedTool{
		name:   "list_dir",
		params: []tools.ParamSpec{{Name: "path", Type: "string"}},
		result: tools.NewSuccessResult("a.txt (3 bytes)"),
	}
	require.NoError(t, registry.Register(tool))

	loop, _ := newLoop(t, registry, decisionYAML("list_dir", "inspect", "  path: ."))

	outcome := loop.Run(context.Background(), Request{Message: "inspect", MaxIterations: 1})
	assert.True(t, outcome.Success)
	// Budget summary is synthesized from the one recorded step
	assert.NotEmpty(t, outcome.Response)
	assert.Equal(t, 1, outcome.History.Len())
	assert.Contains(t, outcome.Response, "list_dir")
}

func TestLoopTwoMalformedDecisionsDegrade(t *testing.T) {
	registry := tools.NewRegistry()
	loop, llm := newLoop(t, registry, "no yaml here at all")

	outcome := loop.Run(context.Background(), Request{Message: "anything"})
	assert.False(t, outcome.Success)
	assert.NotEmpty(t, outcome.Response)
	// One initial attempt plus one re-prompt
	assert.Equal(t, 2, llm.calls)
	assert.Equal(t, 2, outcome.History.Len())
}

func TestLoopRecoversFromSingleMalformedDecision(t *testing.T) {
	registry := tools.NewRegistry()
	loop, _ := newLoop(t, registry,
		"garbled",
		decisionYAML("finish", "Recovered and answered.", ""),
	)

	outcome := loop.Run(context.Background(), Request{Message: "q"})
	assert.True(t, outcome.Success)
	assert.Equal(t, "Recovered and answered.", outcome.Response)
}

func TestLoopToolFailureContinues(t *testing.T) {
	registry := tools.NewRegistry()
	failing := &scriptedTool{
		name:   "read_file",
		params: []tools.ParamSpec{{Name: "path", Type: "string", Required: true}},
		result: tools.NewErrorResult("not found: missing.txt"),
	}
	require.NoError(t, registry.Register(failing))

	loop, _ := newLoop(t, registry,
		decisionYAML("read_file", "try reading", "  path: missing.txt"),
		decisionYAML("finish", "The file does not exist.", ""),
	)

	outcome := loop.Run(context.Background(), Request{Message: "read missing.txt"})
	assert.True(t, outcome.Success)
	assert.Equal(t, "The file does not exist.", outcome.Response)

	entries := outcome.History.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Result.Success)
}

func TestLoopSimpleReportShortCircuits(t *testing.T) {
	registry := tools.NewRegistry()
	report := &scriptedTool{
		name:   "simple_report",
		params: []tools.ParamSpec{{Name: "user_request", Type: "string", Required: true}},
		result: tools.NewSuccessResult("Total spend was $300."),
	}
	require.NoError(t, registry.Register(report))

	loop, llm := newLoop(t, registry,
		decisionYAML("simple_report", "direct data question", "  user_request: total spend"),
	)

	outcome := loop.Run(context.Background(), Request{Message: "what did I spend?"})
	assert.True(t, outcome.Success)
	assert.Equal(t, "Total spend was $300.", outcome.Response)
	assert.Equal(t, 1, llm.calls)
}

func TestLoopCancelledContext(t *testing.T) {
	registry := tools.NewRegistry()
	loop, _ := newLoop(t, registry, decisionYAML("finish", "done", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := loop.Run(ctx, Request{Message: "q"})
	assert.False(t, outcome.Success)
	assert.NotEmpty(t, outcome.Response)
	assert.Equal(t, 0, outcome.History.Len())
}

// blockingCompleter never answers; it waits out the per-iteration deadline.
type blockingCompleter struct {
	calls int
}

func (c *blockingCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	c.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

// failingCompleter always fails with a backend error.
type failingCompleter struct {
	calls int
}

func (c *failingCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	c.calls++
	return "", errors.New("connection refused")
}

func TestLoopIterationTimeoutIsRecordedFailure(t *testing.T) {
	registry := tools.NewRegistry()
	llm := &blockingCompleter{}
	loop := NewLoop(NewEngine(llm, registry), registry, 30*time.Millisecond)

	outcome := loop.Run(context.Background(), Request{Message: "q", MaxIterations: 3})

	// Each timed-out decision is a recorded failure; the loop keeps going
	// until the budget runs out.
	assert.Equal(t, 3, llm.calls)
	require.Equal(t, 3, outcome.History.Len())
	for _, entry := range outcome.History.Entries() {
		assert.False(t, entry.Result.Success)
		assert.Contains(t, entry.Result.Error, "timed out")
	}
	assert.True(t, outcome.Success)
	assert.NotEmpty(t, outcome.Response)
}

func TestLoopBackendFailureIsRecordedFailure(t *testing.T) {
	registry := tools.NewRegistry()
	llm := &failingCompleter{}
	loop := NewLoop(NewEngine(llm, registry), registry, time.Minute)

	outcome := loop.Run(context.Background(), Request{Message: "q", MaxIterations: 2})

	assert.Equal(t, 2, llm.calls)
	require.Equal(t, 2, outcome.History.Len())
	assert.Contains(t, outcome.History.Entries()[0].Result.Error, "connection refused")
	assert.NotEmpty(t, outcome.Response)
}

func TestLoopThreadsRequestScopeToTools(t *testing.T) {
	registry := tools.NewRegistry()
	tool := &scriptedTool{name: "list_dir", params: []tools.ParamSpec{{Name: "path", Type: "string"}}}
	require.NoError(t, registry.Register(tool))

	loop, _ := newLoop(t, registry, decisionYAML("list_dir", "inspect", "  path: ."))
	loop.Run(context.Background(), Request{
		Message:         "inspect",
		WorkspaceDir:    "runs/7",
		EnableDynamicUI: true,
		MaxIterations:   1,
	})

	assert.Equal(t, "runs/7", tool.scope)
	assert.True(t, tool.dynamicUI)
}

func TestSummaryExcerptKeepsRuneBoundaries(t *testing.T) {
	// 200 three-byte runes; the cut lands mid-rune without the boundary check
	got := excerptText(strings.Repeat("€", 200))
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestHistoryExportShape(t *testing.T) {
	h := NewHistoryLog()
	h.Append(
		Decision{Tool: "list_dir", Reason: "inspect", Params: map[string]any{"path": "."}},
		tools.NewSuccessResult("empty"),
	)

	exported := h.Export()
	require.Len(t, exported, 1)
	assert.Equal(t, "list_dir", exported[0]["tool"])
	assert.Equal(t, "inspect", exported[0]["reason"])
	assert.NotEmpty(t, exported[0]["timestamp"])

	h.Clear()
	assert.Zero(t, h.Len())
}
