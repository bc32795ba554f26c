package node

import (
	"fmt"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
)

func FinalizeOutput(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply:           in.Reply,
		SearchPerformed: in.SearchPerformed,
		SearchResults:   in.SearchResults,
		Audio:           in.Audio,
		Requirements:    in.Session.Requirements.Snapshot(),
		CallEnded:       in.CallEnded,
		Outcome:         in.Outcome,
	}, nil
}
