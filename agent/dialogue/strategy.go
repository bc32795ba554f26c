// Package dialogue produces the next system utterance for a session. Two
// interchangeable strategies sit behind one contract: a deterministic
// rule-based responder and a generative one that wraps it as fallback.
// Callers cannot tell which strategy produced a reply and must not depend on
// that distinction.
package dialogue

import (
	"context"

	statex "github.com/gharmitra/gharmitra/agent/state"
)

// Strategy produces a reply from the utterance, conversation history, and the
// post-gate requirements. The returned text has no side effects on session
// state.
type Strategy interface {
	Reply(ctx context.Context, utterance string, history []statex.Turn, reqs statex.Requirements) (string, error)
}
