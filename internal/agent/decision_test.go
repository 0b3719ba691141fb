package agent

import (
	"testing"

	"github.com/Handit-AI/invoice-copilot/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	require.NoError(t, r.Register(&scriptedTool{name: "semantic_search", params: []tools.ParamSpec{
		{Name: "query", Type: "string", Required: true},
		{Name: "top_k", Type: "int"},
	}}))
	require.NoError(t, r.Register(&scriptedTool{name: "list_dir", params: []tools.ParamSpec{
		{Name: "path", Type: "string"},
	}}))
	return r
}

func TestParseDecisionFencedYAML(t *testing.T) {
	raw := "Here is my choice:\n```yaml\ntool: semantic_search\nreason: find utility invoices\nparams:\n  query: electricity\n  top_k: 5\n```"

	d, err := ParseDecision(raw, testRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "semantic_search", d.Tool)
	assert.Equal(t, "find utility invoices", d.Reason)
	assert.Equal(t, "electricity", d.Params["query"])
	assert.Equal(t, 5, d.Params["top_k"])
}

func TestParseDecisionBareYAML(t *testing.T) {
	raw := "tool: list_dir\nreason: inspect workspace\nparams:\n  path: .\n"

	d, err := ParseDecision(raw, testRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "list_dir", d.Tool)
}

func TestParseDecisionFinishSentinel(t *testing.T) {
	raw := "```yaml\ntool: finish\nreason: all done\n```"

	d, err := ParseDecision(raw, testRegistry(t))
	require.NoError(t, err)
	assert.True(t, d.IsTerminal())
}

func TestParseDecisionRespondSentinel(t *testing.T) {
	raw := "```yml\ntool: respond\nreason: here is the answer\n```"

	d, err := ParseDecision(raw, testRegistry(t))
	require.NoError(t, err)
	assert.True(t, d.IsTerminal())
}

func TestParseDecisionUnknownTool(t *testing.T) {
	raw := "```yaml\ntool: launch_rocket\nreason: why not\n```"

	_, err := ParseDecision(raw, testRegistry(t))
	require.Error(t, err)
	var malformed *MalformedDecisionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "unknown_tool", malformed.Code)
}

func TestParseDecisionMissingRequiredParam(t *testing.T) {
	raw := "```yaml\ntool: semantic_search\nreason: search\nparams:\n  top_k: 3\n```"

	_, err := ParseDecision(raw, testRegistry(t))
	var malformed *MalformedDecisionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "invalid_params", malformed.Code)
}

func TestParseDecisionNoYAML(t *testing.T) {
	_, err := ParseDecision("I think we should search for invoices.", testRegistry(t))
	var malformed *MalformedDecisionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "no_yaml", malformed.Code)
}

func TestParseDecisionMissingReason(t *testing.T) {
	raw := "```yaml\ntool: list_dir\n```"

	_, err := ParseDecision(raw, testRegistry(t))
	var malformed *MalformedDecisionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "missing_field", malformed.Code)
}
