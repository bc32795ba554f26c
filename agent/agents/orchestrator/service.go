// Package orchestrator drives one conversation turn to completion: validate,
// load state, extract slots, advance the confirmation gate, generate the
// reply, maybe spend on a search, classify the outcome, and persist. At most
// one in-flight turn per session id is assumed; concurrent turns for the same
// session are a caller error.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	dialoguex "github.com/gharmitra/gharmitra/agent/dialogue"
	gatex "github.com/gharmitra/gharmitra/agent/gate"
	nodex "github.com/gharmitra/gharmitra/agent/nodes"
	outcomex "github.com/gharmitra/gharmitra/agent/outcome"
	searchx "github.com/gharmitra/gharmitra/agent/search"
	statex "github.com/gharmitra/gharmitra/agent/state"
	metricsx "github.com/gharmitra/gharmitra/pkg/metrics"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
	ErrInvalidPhone   = errors.New("phone number is empty")
)

type Orchestrator struct {
	store     statex.Store
	strategy  dialoguex.Strategy
	searcher  contractx.Searcher
	synth     contractx.Synthesizer
	telephony contractx.Telephony
	metrics   *metricsx.Metrics

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	strategy dialoguex.Strategy,
	searcher contractx.Searcher,
	synth contractx.Synthesizer,
	telephony contractx.Telephony,
	m *metricsx.Metrics,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if strategy == nil {
		strategy = dialoguex.NewRuleBased()
	}
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if m == nil {
		m = metricsx.Nop()
	}

	o := &Orchestrator{
		store:     store,
		strategy:  strategy,
		searcher:  searcher,
		synth:     synth,
		telephony: telephony,
		metrics:   m,
		now:       time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn processes one inbound utterance to completion.
func (o *Orchestrator) HandleTurn(ctx context.Context, in contractx.TurnInput) (contractx.TurnOutput, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: in.SessionID,
		Utterance: in.Utterance,
		Voice:     in.Voice,
		Call:      in.Call,
		Property:  in.Property,
		Customer:  in.Customer,
	})
	if err != nil {
		return contractx.TurnOutput{}, err
	}

	o.metrics.Turns.Inc()
	if out.SearchPerformed {
		o.metrics.Searches.WithLabelValues("turn").Inc()
	}
	if out.CallEnded {
		o.metrics.CallsEnded.Inc()
	}

	return contractx.TurnOutput{
		Reply:           out.Reply,
		SearchPerformed: out.SearchPerformed,
		SearchResults:   out.SearchResults,
		Audio:           out.Audio,
		Requirements:    out.Requirements,
		CallEnded:       out.CallEnded,
		Outcome:         out.Outcome,
	}, nil
}

// StartCall places an outbound call and attaches call context to the session.
func (o *Orchestrator) StartCall(ctx context.Context, sessionID, phoneNumber string, property *contractx.PropertyInfo, customer *contractx.CustomerInfo) (contractx.CallDial, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return contractx.CallDial{}, ErrInvalidSession
	}
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return contractx.CallDial{}, ErrInvalidPhone
	}
	if o.telephony == nil {
		return contractx.CallDial{}, errors.New("telephony is not configured")
	}

	now := o.now().UTC()
	st, err := o.loadOrCreate(ctx, sessionID, now)
	if err != nil {
		return contractx.CallDial{}, err
	}

	dial, err := o.telephony.InitiateCall(ctx, phoneNumber, sessionID, property, customer)
	if err != nil {
		return contractx.CallDial{}, fmt.Errorf("initiate call: %w", err)
	}
	callID := strings.TrimSpace(dial.CallID)
	if callID == "" {
		callID = uuid.NewString()
	}

	st.EnterVoiceCall(&contractx.CallInfo{
		CallID:      callID,
		PhoneNumber: phoneNumber,
		Status:      contractx.CallStatusQueued,
		StartedAt:   now,
	}, property, customer, now)

	if err := o.store.Save(ctx, st); err != nil {
		return contractx.CallDial{}, err
	}

	o.metrics.CallsStarted.Inc()
	log.Info().
		Str("session_id", sessionID).
		Str("call_id", callID).
		Msg("outbound call initiated")

	return contractx.CallDial{Success: true, CallID: callID}, nil
}

// HandleCallStatus maps telephony status webhook deliveries onto session
// state transitions. A completed or failed call yields an outcome summary.
func (o *Orchestrator) HandleCallStatus(ctx context.Context, sessionID string, status contractx.CallStatus) (*contractx.OutcomeSummary, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	now := o.now().UTC()
	st, err := o.loadOrCreate(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}

	var summary *contractx.OutcomeSummary
	switch status {
	case contractx.CallStatusInProgress:
		st.Stage = statex.StageVoiceCallActive
		if st.Call != nil {
			st.Call.Status = status
		}
	case contractx.CallStatusCompleted, contractx.CallStatusFailed:
		st.EndCall(status, now)
		s := outcomex.Classify(st.History)
		summary = &s
		o.metrics.CallsEnded.Inc()
	default:
		// Unknown statuses are recorded on the call record only.
		if st.Call != nil {
			st.Call.Status = status
		}
	}
	st.Touch(now)

	if err := o.store.Save(ctx, st); err != nil {
		return nil, err
	}
	return summary, nil
}

// RecordFeedback appends a feedback entry; negative sentiment triggers one
// refinement search built from the accumulated complaint reasons.
func (o *Orchestrator) RecordFeedback(ctx context.Context, sessionID string, fb contractx.Feedback) ([]contractx.SearchResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	now := o.now().UTC()
	st, err := o.loadOrCreate(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}

	if fb.Timestamp.IsZero() {
		fb.Timestamp = now
	}
	if strings.TrimSpace(fb.SubjectID) == "" {
		fb.SubjectID = uuid.NewString()
	}
	st.AppendFeedback(fb)
	st.Stage = statex.StageCollectingFeedback

	var results []contractx.SearchResult
	if fb.Sentiment.Negative() && gatex.ShouldSearch(st.Requirements) {
		query := searchx.Refine(st.Requirements, st.NegativeFeedbackReasons())
		results = o.searcher.Search(ctx, query)
		st.AppendSearch(query, results, now)
		st.Stage = statex.StagePresentingResults
		o.metrics.Searches.WithLabelValues("refinement").Inc()
	}

	st.Touch(now)
	if err := o.store.Save(ctx, st); err != nil {
		return nil, err
	}
	return results, nil
}

// ClearSession destroys the session record explicitly.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrInvalidSession
	}
	return o.store.Delete(ctx, sessionID)
}

func (o *Orchestrator) loadOrCreate(ctx context.Context, sessionID string, now time.Time) (*statex.SessionState, error) {
	st, err := o.store.Load(ctx, sessionID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, statex.ErrStateNotFound) {
		return nil, err
	}
	return statex.NewSessionState(sessionID, now), nil
}
