package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/summarize.txt
var summarizeRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Summarize string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Summarize: strings.TrimSpace(summarizeRaw),
	}
}
