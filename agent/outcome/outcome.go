// Package outcome decides when a sales call has run its course and what came
// of it. Classification is a pure scan over recent dialogue turns; no timer
// or model is involved.
package outcome

import (
	"strings"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

// classifyWindow is how many trailing turns the outcome scan looks at.
const classifyWindow = 4

// Terminal phrases in an assistant reply that signal the call should end.
var terminalPhrases = []string{
	"thank you for taking the time",
	"thank you for your time",
	"have a wonderful day",
	"have a great day",
	"not interested",
	"already bought",
	"already purchased",
	"call you back",
	"call back later",
	"call you later",
	"goodbye",
}

// ShouldEndCall scans the most recent assistant utterance for terminal
// phrases.
func ShouldEndCall(latestReply string) bool {
	text := strings.ToLower(latestReply)
	for _, phrase := range terminalPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// Classify summarizes a finished call from its trailing turns. Cues are
// checked in priority order: a scheduled visit beats a refusal beats a
// callback request; anything else is a plain discussion.
func Classify(history []statex.Turn) contractx.OutcomeSummary {
	window := history
	if len(window) > classifyWindow {
		window = window[len(window)-classifyWindow:]
	}

	var combined strings.Builder
	for _, t := range window {
		combined.WriteString(strings.ToLower(t.Content))
		combined.WriteString(" ")
	}
	text := combined.String()

	summary := contractx.OutcomeSummary{
		Ended:           true,
		DurationMinutes: estimateDuration(len(history)),
	}

	switch {
	case containsAny(text, "site visit", "visit", "schedule", "scheduled"):
		summary.Outcome = "Site visit scheduled"
		summary.NextSteps = "Confirm the visit slot with the customer"
	case containsAny(text, "not interested", "no interest", "already bought", "already purchased"):
		summary.Outcome = "Customer not interested"
		summary.NextSteps = "Mark the lead closed"
	case containsAny(text, "call back", "callback", "call later", "later"):
		summary.Outcome = "Follow-up call requested"
		summary.NextSteps = "Schedule a follow-up call"
	default:
		summary.Outcome = "Discussed property details"
		summary.NextSteps = "Share the property brochure"
	}

	return summary
}

// estimateDuration is a coarse proxy: two turns roughly equal one minute.
func estimateDuration(turnCount int) int {
	minutes := turnCount / 2
	if minutes < 1 {
		return 1
	}
	return minutes
}

func containsAny(text string, cues ...string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
