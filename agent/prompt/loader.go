package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/assistant.txt
	assistantRaw string

	//go:embed template/callscript.txt
	callScriptRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Assistant  string
	CallScript string
}

// LoadPromptSet returns the embedded prompts with surrounding whitespace
// trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Assistant:  strings.TrimSpace(assistantRaw),
		CallScript: strings.TrimSpace(callScriptRaw),
	}
}
