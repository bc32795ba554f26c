package node

import (
	"fmt"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	gatex "github.com/gharmitra/gharmitra/agent/gate"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

// ApplyConfirmation runs the turn-level confirmation transition against the
// pre-extraction snapshot and keeps the advisory stage label roughly honest.
func ApplyConfirmation(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Requirements = gatex.Advance(in.Before, in.Session.Requirements, in.Utterance)

	if in.Session.Stage == statex.StageIntroduction && !in.Session.FirstUserMessage() {
		in.Session.Stage = statex.StageGathering
	}
	return in, nil
}
