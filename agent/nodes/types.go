package node

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

var (
	ErrInvalidMessage = errors.New("utterance is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Utterance string
	Voice     bool
	Call      *contractx.CallInfo
	Property  *contractx.PropertyInfo
	Customer  *contractx.CustomerInfo
}

type GraphOutput struct {
	Reply           string
	SearchPerformed bool
	SearchResults   []contractx.SearchResult
	Audio           *contractx.AudioDescriptor
	Requirements    contractx.RequirementsSnapshot
	CallEnded       bool
	Outcome         *contractx.OutcomeSummary
}

// GraphState is threaded through the turn pipeline. Before holds the
// requirements snapshot taken prior to this turn's extraction; the
// confirmation transition must compare against it, not the extractor output.
type GraphState struct {
	SessionID string
	Utterance string
	Voice     bool
	Now       time.Time

	Call     *contractx.CallInfo
	Property *contractx.PropertyInfo
	Customer *contractx.CustomerInfo

	Session *statex.SessionState
	Before  statex.Requirements

	Reply           string
	SearchPerformed bool
	SearchResults   []contractx.SearchResult
	Audio           *contractx.AudioDescriptor
	CallEnded       bool
	Outcome         *contractx.OutcomeSummary
}

// ValidateRequest rejects malformed input before any state is touched.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	utterance := strings.TrimSpace(in.Utterance)
	if utterance == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Utterance: utterance,
		Voice:     in.Voice,
		Call:      in.Call,
		Property:  in.Property,
		Customer:  in.Customer,
		Now:       nowFn().UTC(),
	}, nil
}
