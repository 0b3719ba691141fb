package agent

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Handit-AI/invoice-copilot/internal/tools"
)

// HistoryEntry records one decision and its outcome.
type HistoryEntry struct {
	Decision  Decision         `json:"decision"`
	Result    tools.ToolResult `json:"result"`
	Timestamp time.Time        `json:"timestamp"`
}

// HistoryLog is the append-only record of a session's iterations.
type HistoryLog struct {
	mu      sync.RWMutex
	entries []HistoryEntry
}

// NewHistoryLog creates an empty history log.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{}
}

// Append records an entry.
func (h *HistoryLog) Append(decision Decision, result tools.ToolResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, HistoryEntry{
		Decision:  decision,
		Result:    result,
		Timestamp: time.Now().UTC(),
	})
}

// Len returns the number of recorded entries.
func (h *HistoryLog) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Entries returns a copy of the recorded entries.
func (h *HistoryLog) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear removes all entries.
func (h *HistoryLog) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

// Export renders the history for API consumers.
func (h *HistoryLog) Export() []map[string]any {
	entries := h.Entries()
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"tool":      e.Decision.Tool,
			"reason":    e.Decision.Reason,
			"params":    e.Decision.Params,
			"result":    e.Result.ToMap(),
			"timestamp": e.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}

const resultExcerptLimit = 500

// Summary renders the history as numbered prompt context for the next
// decision. Long results are truncated so the prompt stays bounded.
func (h *HistoryLog) Summary() string {
	entries := h.Entries()
	if len(entries) == 0 {
		return "No actions taken yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Actions taken so far (%d):\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&sb, "\n%d. Tool: %s\n   Reason: %s\n", i+1, e.Decision.Tool, e.Decision.Reason)
		if len(e.Decision.Params) > 0 {
			fmt.Fprintf(&sb, "   Params: %v\n", e.Decision.Params)
		}
		if e.Result.Success {
			fmt.Fprintf(&sb, "   Result: success. %s\n", excerptText(e.Result.Content))
		} else {
			fmt.Fprintf(&sb, "   Result: FAILED. %s\n", excerptText(e.Result.Error))
		}
	}
	return sb.String()
}

// LastSuccess returns the most recent successful entry, if any.
func (h *HistoryLog) LastSuccess() (HistoryEntry, bool) {
	entries := h.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Result.Success {
			return entries[i], true
		}
	}
	return HistoryEntry{}, false
}

func excerptText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= resultExcerptLimit {
		return s
	}
	// Back off to a rune boundary so the cut never splits a UTF-8 sequence
	cut := resultExcerptLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
