package node

import (
	"fmt"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	extractx "github.com/gharmitra/gharmitra/agent/extract"
)

// ExtractSlots appends the inbound turn to the log, snapshots the
// requirements, and runs the extractor on top of them. The snapshot taken
// here is what the confirmation transition compares against.
func ExtractSlots(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.AppendTurn(contractx.RoleUser, in.Utterance, in.Now)
	in.Session.Started = true

	in.Before = in.Session.Requirements
	in.Session.Requirements = extractx.Apply(in.Utterance, in.Before)
	return in, nil
}
