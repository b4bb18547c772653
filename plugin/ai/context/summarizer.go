package context

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/relaymind/recall/plugin/ai/memory"
)

// Summarizer condenses a run of messages into one episode summary.
// Implementations must be side-effect free; the orchestrator may call them
// on every episodic boundary.
type Summarizer interface {
	Summarize(messages []memory.Message) string
}

const truncateLen = 100

// TruncateSummarizer joins the first messages of the window, truncated.
// It is the zero-dependency default; a model-backed Summarizer can replace
// it without touching the orchestrator.
type TruncateSummarizer struct{}

func (TruncateSummarizer) Summarize(messages []memory.Message) string {
	if len(messages) == 0 {
		return ""
	}

	parts := []string{}
	for _, msg := range messages[:min(2, len(messages))] {
		content := msg.Content
		if len(content) > truncateLen {
			// Back up to a rune boundary so the cut never splits a
			// multi-byte character.
			cut := truncateLen
			for cut > 0 && !utf8.RuneStart(content[cut]) {
				cut--
			}
			content = content[:cut] + "..."
		}
		parts = append(parts, fmt.Sprintf("%s: %s", msg.Role, content))
	}
	return strings.Join(parts, " | ")
}
