package prompt

import (
	"strings"
	"testing"

	"github.com/selam-edu/core/internal/modules/qa/language"
	"github.com/selam-edu/core/internal/modules/qa/retrieval"
)

func TestBuildDeterministic(t *testing.T) {
	in := Input{
		Question: "What is Timkat?",
		Language: language.English,
		History: []HistoryMessage{
			{Role: "user", Content: "What is fasting?"},
			{Role: "assistant", Content: "Fasting is abstaining from food for prayer."},
		},
		Retrieved: []retrieval.Item{{Title: "Timkat", Category: "feast", Content: "Timkat commemorates the baptism of Christ."}},
		Lesson:    "Feasts of the Church",
	}
	sys1, user1 := Build(in)
	sys2, user2 := Build(in)
	if sys1 != sys2 || user1 != user2 {
		t.Fatal("Build must be deterministic for identical input")
	}
}

func TestBuildContainsSections(t *testing.T) {
	in := Input{
		Question:  "What is Timkat?",
		Language:  language.English,
		History:   []HistoryMessage{{Role: "user", Content: "hello"}},
		Retrieved: []retrieval.Item{{Title: "Timkat", Category: "feast", Content: "chunk"}},
		Course:    "Foundations",
		Chapter:   "Feasts",
		Lesson:    "Timkat",
	}
	sys, user := Build(in)

	if !strings.Contains(user, "## Current lesson") {
		t.Error("missing lesson block")
	}
	if !strings.Contains(user, "## Recent conversation") {
		t.Error("missing history block")
	}
	if !strings.Contains(user, "## Reference material") {
		t.Error("missing retrieval block")
	}
	if !strings.Contains(user, "<<<QUESTION\nWhat is Timkat?\nQUESTION") {
		t.Error("question must be fenced")
	}
	if !strings.Contains(sys, "English") {
		t.Error("system prompt must carry the output language directive")
	}
}

func TestBuildOmitsEmptySections(t *testing.T) {
	_, user := Build(Input{Question: "q", Language: language.English})
	if strings.Contains(user, "## Current lesson") ||
		strings.Contains(user, "## Recent conversation") ||
		strings.Contains(user, "## Reference material") {
		t.Fatalf("empty sections must be omitted:\n%s", user)
	}
}

func TestBuildStrictMode(t *testing.T) {
	base, _ := Build(Input{Question: "q", Language: language.English})
	strict, _ := Build(Input{Question: "q", Language: language.English, Strict: true})
	if len(strict) <= len(base) {
		t.Fatal("strict mode must add constraints to the system prompt")
	}
}

func TestBuildTruncatesHistoryAndChunks(t *testing.T) {
	long := strings.Repeat("x", 2000)
	in := Input{
		Question:  "q",
		Language:  language.English,
		History:   []HistoryMessage{{Role: "user", Content: long}},
		Retrieved: []retrieval.Item{{Title: "t", Category: "c", Content: long}},
	}
	_, user := Build(in)
	if strings.Contains(user, long) {
		t.Fatal("long history and chunks must be truncated")
	}
}

func TestBuildCapsRetrievedItems(t *testing.T) {
	items := make([]retrieval.Item, 6)
	for i := range items {
		items[i] = retrieval.Item{Title: "t", Category: "c", Content: "chunk"}
	}
	_, user := Build(Input{Question: "q", Language: language.English, Retrieved: items})
	if got := strings.Count(user, "[c] t"); got != maxRetrievedItems {
		t.Fatalf("expected %d retrieved items in prompt, got %d", maxRetrievedItems, got)
	}
}

func TestOutputDirectivePerLanguage(t *testing.T) {
	seen := map[string]bool{}
	for _, lang := range []language.Language{language.English, language.Amharic, language.Tigrigna, language.Oromo} {
		sys, _ := Build(Input{Question: "q", Language: lang})
		if seen[sys] {
			t.Fatalf("system prompt for %s duplicates another language", lang)
		}
		seen[sys] = true
	}
}
