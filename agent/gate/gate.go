// Package gate decides when requirements are complete and when the paid
// search may run. It is the only thing standing between a conversation and
// API spend, so every transition is a pure function over snapshots.
package gate

import (
	"regexp"

	statex "github.com/gharmitra/gharmitra/agent/state"
)

var (
	affirmativePattern = regexp.MustCompile(`(?i)\b(?:yes|yeah|yep|ok|okay|sure|proceed|confirm|correct|go ahead|search|find)\b`)
	revisionPattern    = regexp.MustCompile(`(?i)\b(?:no|nope|change|modify|different|wrong|not right|incorrect)\b`)
)

// Complete reports whether the three mandatory slots are filled. Budget and
// locality are optional refinements.
func Complete(r statex.Requirements) bool {
	return r.PropertyType != "" && r.City != "" && r.BHK != ""
}

// ShouldSearch is the sole gate before any paid search call.
func ShouldSearch(r statex.Requirements) bool {
	return Complete(r) && r.Confirmed
}

// Affirmed reports whether the utterance carries an affirmative cue.
func Affirmed(utterance string) bool {
	return affirmativePattern.MatchString(utterance)
}

// Revised reports whether the utterance carries a revision cue.
func Revised(utterance string) bool {
	return revisionPattern.MatchString(utterance)
}

// Advance applies the turn-level confirmation transition. before is the
// requirements snapshot taken prior to this turn's extraction; after is the
// extractor's output for the same turn. The cues are evaluated against the
// pre-extraction confirmation state, and change detection compares slots
// against the pre-extraction snapshot so a just-filled slot never triggers a
// spurious reset.
func Advance(before, after statex.Requirements, utterance string) statex.Requirements {
	out := after

	if before.WaitingForConfirmation {
		switch {
		case Affirmed(utterance):
			out.Confirmed = true
			out.WaitingForConfirmation = false
			return out
		case Revised(utterance):
			out.Confirmed = false
			out.WaitingForConfirmation = false
		}
	}

	if before.WaitingForConfirmation && !before.SlotsEqual(after) {
		// The user revised an answer mid-confirmation; re-gather consent.
		out.Confirmed = false
		out.WaitingForConfirmation = false
	}

	if Complete(out) && !out.Confirmed && !out.WaitingForConfirmation {
		out.WaitingForConfirmation = true
	}

	return out
}
