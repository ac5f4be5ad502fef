// Package prompt assembles the provider prompt from faith context,
// conversation history, retrieved context and the language directive.
package prompt

import (
	"fmt"
	"strings"

	"github.com/selam-edu/core/internal/modules/qa/language"
	"github.com/selam-edu/core/internal/modules/qa/retrieval"
)

const (
	maxHistoryChars   = 150
	maxRetrievedItems = 3
	maxChunkChars     = 600
)

// HistoryMessage is one prior turn included in the prompt.
type HistoryMessage struct {
	Role    string
	Content string
}

// Input carries everything the builder needs. Build is deterministic for
// a given Input.
type Input struct {
	Question  string
	Language  language.Language
	History   []HistoryMessage
	Retrieved []retrieval.Item
	Lesson    string
	Course    string
	Chapter   string
	Strict    bool
}

// Build produces the system prompt and the user prompt.
func Build(in Input) (systemPrompt, userPrompt string) {
	var sys strings.Builder
	sys.WriteString(faithContext)
	sys.WriteString("\n\n")
	sys.WriteString(hardConstraints)
	if in.Strict {
		sys.WriteString("\n\n")
		sys.WriteString(strictConstraints)
	}
	sys.WriteString("\n\n")
	sys.WriteString(outputDirective(in.Language))

	var user strings.Builder

	if in.Course != "" || in.Lesson != "" || in.Chapter != "" {
		user.WriteString("## Current lesson\n")
		if in.Course != "" {
			fmt.Fprintf(&user, "Course: %s\n", in.Course)
		}
		if in.Chapter != "" {
			fmt.Fprintf(&user, "Chapter: %s\n", in.Chapter)
		}
		if in.Lesson != "" {
			fmt.Fprintf(&user, "Lesson: %s\n", in.Lesson)
		}
		user.WriteString("\n")
	}

	if len(in.History) > 0 {
		user.WriteString("## Recent conversation\n")
		for _, msg := range in.History {
			fmt.Fprintf(&user, "%s: %s\n", msg.Role, truncate(msg.Content, maxHistoryChars))
		}
		user.WriteString("\n")
	}

	retrieved := in.Retrieved
	if len(retrieved) > maxRetrievedItems {
		retrieved = retrieved[:maxRetrievedItems]
	}
	if len(retrieved) > 0 {
		user.WriteString("## Reference material\n")
		for _, item := range retrieved {
			fmt.Fprintf(&user, "[%s] %s\n%s\n\n", item.Category, item.Title, truncate(item.Content, maxChunkChars))
		}
	}

	user.WriteString("<<<QUESTION\n")
	user.WriteString(in.Question)
	user.WriteString("\nQUESTION")

	return sys.String(), user.String()
}

func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
