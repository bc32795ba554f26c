package contract

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TurnInput is the single per-turn boundary consumed by chat and voice front ends.
type TurnInput struct {
	SessionID string        `json:"session_id"`
	Utterance string        `json:"utterance"`
	Voice     bool          `json:"voice,omitempty"`
	Call      *CallInfo     `json:"call,omitempty"`
	Property  *PropertyInfo `json:"property,omitempty"`
	Customer  *CustomerInfo `json:"customer,omitempty"`
}

type TurnOutput struct {
	Reply           string               `json:"reply"`
	SearchPerformed bool                 `json:"search_performed"`
	SearchResults   []SearchResult       `json:"search_results,omitempty"`
	Audio           *AudioDescriptor     `json:"audio,omitempty"`
	Requirements    RequirementsSnapshot `json:"requirements"`
	CallEnded       bool                 `json:"call_ended"`
	Outcome         *OutcomeSummary      `json:"outcome,omitempty"`
}

// RequirementsSnapshot is the wire form of the session requirements record.
type RequirementsSnapshot struct {
	PropertyType           string `json:"property_type,omitempty"`
	Budget                 string `json:"budget,omitempty"`
	City                   string `json:"city,omitempty"`
	Locality               string `json:"locality,omitempty"`
	BHK                    string `json:"bhk,omitempty"`
	Confirmed              bool   `json:"confirmed"`
	WaitingForConfirmation bool   `json:"waiting_for_confirmation"`
}

type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// AudioDescriptor points at synthesized speech for a reply. A text-only
// descriptor (Format "text", empty Data) is the deterministic fallback.
type AudioDescriptor struct {
	Format string `json:"format"`
	Data   []byte `json:"data,omitempty"`
	Text   string `json:"text,omitempty"`
}

type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
)

type CallInfo struct {
	CallID      string     `json:"call_id"`
	PhoneNumber string     `json:"phone_number"`
	Status      CallStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
}

type PropertyInfo struct {
	Title    string `json:"title"`
	Locality string `json:"locality,omitempty"`
	City     string `json:"city,omitempty"`
	BHK      string `json:"bhk,omitempty"`
	Price    string `json:"price,omitempty"`
}

type CustomerInfo struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type Sentiment string

const (
	SentimentLike          Sentiment = "like"
	SentimentDislike       Sentiment = "dislike"
	SentimentInterested    Sentiment = "interested"
	SentimentNotInterested Sentiment = "not_interested"
)

// Negative reports feed query refinement on later searches.
func (s Sentiment) Negative() bool {
	return s == SentimentDislike || s == SentimentNotInterested
}

type Feedback struct {
	SubjectID string    `json:"subject_id"`
	Sentiment Sentiment `json:"sentiment"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type OutcomeSummary struct {
	Ended           bool   `json:"ended"`
	Outcome         string `json:"outcome"`
	NextSteps       string `json:"next_steps,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
}

type CallDial struct {
	Success bool   `json:"success"`
	CallID  string `json:"call_id,omitempty"`
}
