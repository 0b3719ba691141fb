package pinecone

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const excerptLimit = 100

// FormatMatches renders matches as a numbered listing suitable for feeding
// back into a model prompt or returning to a user.
func FormatMatches(matches []Match) string {
	if len(matches) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d results:\n", len(matches))
	for i, m := range matches {
		fmt.Fprintf(&sb, "\n%d. ID: %s | Score: %.3f", i+1, m.ID, m.Score)
		if category := metadataString(m.Metadata, "category"); category != "" {
			fmt.Fprintf(&sb, " | Category: %s", category)
		}
		if filename := metadataString(m.Metadata, "original_filename"); filename != "" {
			fmt.Fprintf(&sb, " | File: %s", filename)
		}
		if text := excerpt(m.Metadata); text != "" {
			fmt.Fprintf(&sb, "\n   Text: %s", text)
		}
	}
	return sb.String()
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}

// excerpt returns the chunk text truncated for display.
func excerpt(metadata map[string]any) string {
	text := metadataString(metadata, "chunk_text")
	if text == "" {
		text = metadataString(metadata, "content")
	}
	text = strings.TrimSpace(text)
	if len(text) <= excerptLimit {
		return text
	}
	// Back off to a rune boundary so the cut never splits a UTF-8 sequence
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
