package node

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

// LoadOrCreateState fetches the session record or lazily creates a fresh one.
// A missing session is never fatal; it just means "start fresh".
func LoadOrCreateState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			return nil, err
		}
		st = statex.NewSessionState(in.SessionID, in.Now)
	}

	if in.Voice {
		st.HistoryLimit = statex.VoiceHistoryLimit
	}
	if in.Call != nil && st.Call == nil {
		st.EnterVoiceCall(in.Call, in.Property, in.Customer, in.Now)
	}

	in.Session = st
	return in, nil
}
