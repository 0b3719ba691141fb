package agent

import (
	"fmt"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/tools"

	"gopkg.in/yaml.v3"
)

// Terminal sentinels the model may use instead of a tool name.
const (
	SentinelFinish  = "finish"
	SentinelRespond = "respond"
)

// Decision is one validated step chosen by the model.
type Decision struct {
	Tool   string         `yaml:"tool" json:"tool"`
	Reason string         `yaml:"reason" json:"reason"`
	Params map[string]any `yaml:"params" json:"params"`
}

// IsTerminal reports whether the decision ends the loop.
func (d Decision) IsTerminal() bool {
	return d.Tool == SentinelFinish || d.Tool == SentinelRespond
}

// MalformedDecisionError indicates the model's output could not be turned
// into a valid Decision. The code classifies the failure for logging and
// re-prompting.
type MalformedDecisionError struct {
	Code   string // no_yaml, bad_yaml, missing_field, unknown_tool, invalid_params
	Detail string
}

func (e *MalformedDecisionError) Error() string {
	return fmt.Sprintf("malformed decision (%s): %s", e.Code, e.Detail)
}

// ParseDecision extracts and validates a Decision from raw model output.
// The model is expected to reply with a fenced YAML object carrying tool,
// reason and params. Unknown tool names and schema mismatches are rejected
// here so they never reach dispatch.
func ParseDecision(raw string, registry *tools.Registry) (Decision, error) {
	block, ok := extractYAML(raw)
	if !ok {
		return Decision{}, &MalformedDecisionError{Code: "no_yaml", Detail: "response contains no YAML block"}
	}

	var d Decision
	if err := yaml.Unmarshal([]byte(block), &d); err != nil {
		return Decision{}, &MalformedDecisionError{Code: "bad_yaml", Detail: err.Error()}
	}

	d.Tool = strings.TrimSpace(d.Tool)
	if d.Tool == "" {
		return Decision{}, &MalformedDecisionError{Code: "missing_field", Detail: "tool is empty"}
	}
	if strings.TrimSpace(d.Reason) == "" {
		return Decision{}, &MalformedDecisionError{Code: "missing_field", Detail: "reason is empty"}
	}

	if d.IsTerminal() {
		return d, nil
	}

	tool, err := registry.Get(d.Tool)
	if err != nil {
		return Decision{}, &MalformedDecisionError{Code: "unknown_tool", Detail: d.Tool}
	}

	if d.Params == nil {
		d.Params = map[string]any{}
	}
	if err := tool.Validate(d.Params); err != nil {
		return Decision{}, &MalformedDecisionError{Code: "invalid_params", Detail: err.Error()}
	}

	return d, nil
}

// extractYAML pulls the YAML body out of the model response. Fenced blocks
// (```yaml, ```yml or bare ```) are preferred; otherwise the whole response
// is treated as YAML when it looks like a mapping.
func extractYAML(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	for _, fence := range []string{"```yaml", "```yml", "```"} {
		start := strings.Index(trimmed, fence)
		if start < 0 {
			continue
		}
		rest := trimmed[start+len(fence):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		body := strings.TrimSpace(rest[:end])
		if body != "" {
			return body, true
		}
	}

	// Raw YAML without fences
	if strings.Contains(trimmed, "tool:") {
		return trimmed, true
	}
	return "", false
}
