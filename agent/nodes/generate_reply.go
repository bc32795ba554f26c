package node

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	dialoguex "github.com/gharmitra/gharmitra/agent/dialogue"
)

// GenerateReply produces the assistant turn and appends it to the log.
func GenerateReply(ctx context.Context, in *GraphState, strategy dialoguex.Strategy) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if strategy == nil {
		return nil, fmt.Errorf("%w: reply strategy is required", contractx.ErrValidation)
	}

	reply, err := strategy.Reply(ctx, in.Utterance, in.Session.History, in.Session.Requirements)
	if err != nil {
		return nil, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: reply strategy returned empty text", contractx.ErrValidation)
	}

	in.Reply = reply
	in.Session.AppendTurn(contractx.RoleAssistant, reply, in.Now)
	return in, nil
}
