package node

import (
	"context"
	"fmt"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
)

// SynthesizeAudio attaches speech for voice sessions. Synthesizers own their
// fallback, so this node never fails a turn.
func SynthesizeAudio(ctx context.Context, in *GraphState, synth contractx.Synthesizer) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if !in.Voice || synth == nil {
		return in, nil
	}

	in.Audio = synth.Synthesize(ctx, in.Reply)
	return in, nil
}
