package node

import (
	"fmt"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	outcomex "github.com/gharmitra/gharmitra/agent/outcome"
)

// ClassifyOutcome checks the just-generated reply for terminal phrases and,
// when the session should end, summarizes it from the trailing turns.
func ClassifyOutcome(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if !outcomex.ShouldEndCall(in.Reply) {
		return in, nil
	}

	summary := outcomex.Classify(in.Session.History)
	in.CallEnded = true
	in.Outcome = &summary
	in.Session.EndCall(contractx.CallStatusCompleted, in.Now)
	return in, nil
}
