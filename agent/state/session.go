package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
)

// Stage is an advisory label for where the conversation is. The real gating
// logic lives in the Requirements flags, not here.
type Stage string

const (
	StageIntroduction       Stage = "introduction"
	StageGathering          Stage = "gathering_requirements"
	StageSearching          Stage = "searching"
	StagePresentingResults  Stage = "presenting_results"
	StageCollectingFeedback Stage = "collecting_feedback"
	StageInitiatingCall     Stage = "initiating_voice_call"
	StageVoiceCallActive    Stage = "voice_call_active"
	StageCallEnded          Stage = "call_ended"
)

const (
	// ChatHistoryLimit bounds chat transcripts; voice calls keep more context.
	ChatHistoryLimit  = 10
	VoiceHistoryLimit = 50
)

// Requirements is the finite-state record the whole conversation mutates.
// Slot writes are first-write-wins per session; the two flags implement the
// ask-before-spending confirmation protocol.
type Requirements struct {
	PropertyType string `json:"property_type,omitempty"` // "buy" | "rent"
	Budget       string `json:"budget,omitempty"`        // normalized, e.g. "85 Lakh"
	City         string `json:"city,omitempty"`
	Locality     string `json:"locality,omitempty"`
	BHK          string `json:"bhk,omitempty"` // e.g. "2BHK"

	Confirmed              bool `json:"confirmed"`
	WaitingForConfirmation bool `json:"waiting_for_confirmation"`
}

// SlotsEqual reports whether the five extractable slots match. Flag state is
// deliberately ignored; change detection compares slots only.
func (r Requirements) SlotsEqual(other Requirements) bool {
	return r.PropertyType == other.PropertyType &&
		r.Budget == other.Budget &&
		r.City == other.City &&
		r.Locality == other.Locality &&
		r.BHK == other.BHK
}

func (r Requirements) Snapshot() contractx.RequirementsSnapshot {
	return contractx.RequirementsSnapshot{
		PropertyType:           r.PropertyType,
		Budget:                 r.Budget,
		City:                   r.City,
		Locality:               r.Locality,
		BHK:                    r.BHK,
		Confirmed:              r.Confirmed,
		WaitingForConfirmation: r.WaitingForConfirmation,
	}
}

type Turn struct {
	Role      contractx.Role `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
}

// SearchRecord is an append-only audit entry; never mutated after append.
type SearchRecord struct {
	Query     string                   `json:"query"`
	Results   []contractx.SearchResult `json:"results"`
	Timestamp time.Time                `json:"timestamp"`
}

// SessionState is the persistent per-conversation record. One writer per
// session id is assumed; the store provides atomic per-key replacement.
type SessionState struct {
	SessionID string `json:"session_id"`

	Requirements Requirements `json:"requirements"`
	Stage        Stage        `json:"stage"`
	Started      bool         `json:"started"`

	History        []Turn               `json:"history,omitempty"`
	HistoryLimit   int                  `json:"history_limit,omitempty"`
	SearchHistory  []SearchRecord       `json:"search_history,omitempty"`
	FeedbackLog    []contractx.Feedback `json:"feedback_log,omitempty"`
	SearchAttempts int                  `json:"search_attempts"`

	Call     *contractx.CallInfo     `json:"call,omitempty"`
	Property *contractx.PropertyInfo `json:"property,omitempty"`
	Customer *contractx.CustomerInfo `json:"customer,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidRole    = errors.New("turn role is invalid")
)

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:    sessionID,
		Stage:        StageIntroduction,
		HistoryLimit: ChatHistoryLimit,
		UpdatedAt:    now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendTurn adds a turn and evicts the oldest entries past the history
// limit. Ordering is the source of truth for first-message detection, so
// entries are never reordered, only dropped from the front.
func (s *SessionState) AppendTurn(role contractx.Role, content string, now time.Time) {
	s.History = append(s.History, Turn{
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	})
	limit := s.HistoryLimit
	if limit <= 0 {
		limit = ChatHistoryLimit
	}
	if len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}

// FirstUserMessage reports whether the inbound turn being processed is the
// first user message of the session.
func (s *SessionState) FirstUserMessage() bool {
	count := 0
	for _, t := range s.History {
		if t.Role == contractx.RoleUser {
			count++
		}
	}
	return count <= 1
}

func (s *SessionState) LastAssistantTurn() (Turn, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == contractx.RoleAssistant {
			return s.History[i], true
		}
	}
	return Turn{}, false
}

func (s *SessionState) AppendSearch(query string, results []contractx.SearchResult, now time.Time) {
	s.SearchHistory = append(s.SearchHistory, SearchRecord{
		Query:     query,
		Results:   results,
		Timestamp: now.UTC(),
	})
	s.SearchAttempts++
}

func (s *SessionState) AppendFeedback(fb contractx.Feedback) {
	s.FeedbackLog = append(s.FeedbackLog, fb)
}

// NegativeFeedbackReasons collects reasons from negative entries, oldest
// first, for search refinement.
func (s *SessionState) NegativeFeedbackReasons() []string {
	var reasons []string
	for _, fb := range s.FeedbackLog {
		if fb.Sentiment.Negative() && strings.TrimSpace(fb.Reason) != "" {
			reasons = append(reasons, fb.Reason)
		}
	}
	return reasons
}

// EnterVoiceCall attaches call context and widens the history bound.
func (s *SessionState) EnterVoiceCall(call *contractx.CallInfo, property *contractx.PropertyInfo, customer *contractx.CustomerInfo, now time.Time) {
	s.Call = call
	if property != nil {
		s.Property = property
	}
	if customer != nil {
		s.Customer = customer
	}
	s.HistoryLimit = VoiceHistoryLimit
	s.Stage = StageInitiatingCall
	s.Touch(now)
}

func (s *SessionState) EndCall(status contractx.CallStatus, now time.Time) {
	if s.Call != nil {
		s.Call.Status = status
	}
	s.Stage = StageCallEnded
	s.Touch(now)
}

func (s *SessionState) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	for i, t := range s.History {
		if t.Role != contractx.RoleUser && t.Role != contractx.RoleAssistant {
			return fmt.Errorf("%w: history[%d] role=%q", ErrInvalidRole, i, t.Role)
		}
	}
	if s.Requirements.Confirmed && s.Requirements.WaitingForConfirmation {
		return fmt.Errorf("requirements cannot be both confirmed and waiting for confirmation")
	}
	return nil
}

// Clone deep-copies the record so pure stages can work on snapshots.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.History = append([]Turn(nil), s.History...)
	out.SearchHistory = append([]SearchRecord(nil), s.SearchHistory...)
	out.FeedbackLog = append([]contractx.Feedback(nil), s.FeedbackLog...)
	if s.Call != nil {
		call := *s.Call
		out.Call = &call
	}
	if s.Property != nil {
		prop := *s.Property
		out.Property = &prop
	}
	if s.Customer != nil {
		cust := *s.Customer
		out.Customer = &cust
	}
	return &out
}
