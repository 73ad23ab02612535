package prompt

import (
	"strings"
	"testing"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if set.Summarize == "" {
		t.Fatal("summarize prompt is empty")
	}
	// The prompt goes through an FString chat template.
	if strings.ContainsAny(set.Summarize, "{}") {
		t.Fatal("summarize prompt must not contain template braces")
	}
}
