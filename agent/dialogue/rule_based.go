package dialogue

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

const introduction = "Hi! I'm GharMitra, your property assistant. I can help you find a home to buy or rent. Are you looking to buy or rent a property?"

// RuleBased is the deterministic responder: a decision list keyed on
// conversation position and requirements completeness. It is always available
// and serves as the fallback for every other strategy.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (r *RuleBased) Reply(_ context.Context, _ string, history []statex.Turn, reqs statex.Requirements) (string, error) {
	if firstUserTurn(history) {
		return introduction, nil
	}

	// Drill into the first missing mandatory slot, in fixed order. Budget is
	// optional and must never hold up the confirmation question.
	switch {
	case reqs.PropertyType == "":
		return "Got it. Are you looking to buy or rent?", nil
	case reqs.City == "":
		return "Which city would you like the property in?", nil
	case reqs.BHK == "":
		return "How many bedrooms are you looking for? For example, 2BHK or 3BHK.", nil
	}

	if !reqs.Confirmed {
		msg := fmt.Sprintf(
			"Just to confirm, you're %s. Shall I search for matching properties?",
			Summarize(reqs),
		)
		if reqs.Budget == "" {
			msg += " You can also share a budget, like 60 Lakh or 1 Crore, to narrow things down."
		}
		return msg, nil
	}

	return "Let me know if you'd like to refine your search or hear about other options.", nil
}

// Summarize renders the requirements as one human-readable phrase, e.g.
// "buying a 2BHK in Wakad, Pune with budget 65 Lakh".
func Summarize(r statex.Requirements) string {
	var b strings.Builder

	switch r.PropertyType {
	case "rent":
		b.WriteString("renting")
	default:
		b.WriteString("buying")
	}

	if r.BHK != "" {
		b.WriteString(" a " + r.BHK)
	} else {
		b.WriteString(" a property")
	}

	if r.Locality != "" && r.City != "" {
		b.WriteString(fmt.Sprintf(" in %s, %s", r.Locality, r.City))
	} else if r.City != "" {
		b.WriteString(" in " + r.City)
	}

	if r.Budget != "" {
		b.WriteString(" with budget " + r.Budget)
	}

	return b.String()
}

func firstUserTurn(history []statex.Turn) bool {
	count := 0
	for _, t := range history {
		if t.Role == contractx.RoleUser {
			count++
		}
	}
	return count <= 1
}
