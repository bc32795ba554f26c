package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

type fakeSearcher struct {
	queries []string
	results []contractx.SearchResult
}

func (f *fakeSearcher) Search(ctx context.Context, query string) []contractx.SearchResult {
	f.queries = append(f.queries, query)
	return f.results
}

type fakeSynth struct {
	calls int
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) *contractx.AudioDescriptor {
	f.calls++
	return &contractx.AudioDescriptor{Format: "mp3", Data: []byte{1}, Text: text}
}

type fakeTelephony struct {
	dial    contractx.CallDial
	err     error
	lastTo  string
	lastSID string
}

func (f *fakeTelephony) InitiateCall(ctx context.Context, phoneNumber, sessionID string, property *contractx.PropertyInfo, customer *contractx.CustomerInfo) (contractx.CallDial, error) {
	f.lastTo = phoneNumber
	f.lastSID = sessionID
	if f.err != nil {
		return contractx.CallDial{}, f.err
	}
	return f.dial, nil
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *statex.MemoryStore, *fakeSearcher, *fakeTelephony) {
	t.Helper()

	store := statex.NewMemoryStore()
	searcher := &fakeSearcher{
		results: []contractx.SearchResult{
			{Title: "2BHK in Andheri", Link: "https://housing.com/1", Snippet: "bright and airy"},
		},
	}
	tel := &fakeTelephony{dial: contractx.CallDial{Success: true, CallID: "CA123"}}

	o, err := New(store, nil, searcher, &fakeSynth{}, tel, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o, store, searcher, tel
}

func turn(t *testing.T, o *Orchestrator, sessionID, utterance string) contractx.TurnOutput {
	t.Helper()
	out, err := o.HandleTurn(context.Background(), contractx.TurnInput{
		SessionID: sessionID,
		Utterance: utterance,
	})
	if err != nil {
		t.Fatalf("HandleTurn(%q) error = %v", utterance, err)
	}
	return out
}

func TestHandleTurnRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	o, _, _, _ := newTestOrchestrator(t)

	_, err := o.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "s1", Utterance: "   "})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("HandleTurn() error = %v, want ErrInvalidMessage", err)
	}

	_, err = o.HandleTurn(context.Background(), contractx.TurnInput{SessionID: "", Utterance: "hi"})
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("HandleTurn() error = %v, want ErrInvalidSession", err)
	}
}

func TestHandleTurnConversationToSearch(t *testing.T) {
	t.Parallel()

	o, store, searcher, _ := newTestOrchestrator(t)
	const sessionID = "session-e2e"

	out := turn(t, o, sessionID, "Hello, I want to buy a flat")
	if !strings.Contains(out.Reply, "buy or rent") {
		t.Fatalf("first reply = %q, want introduction", out.Reply)
	}
	if out.Requirements.PropertyType != "buy" {
		t.Fatalf("PropertyType = %q, want buy", out.Requirements.PropertyType)
	}

	out = turn(t, o, sessionID, "In Mumbai")
	if out.Requirements.City != "Mumbai" {
		t.Fatalf("City = %q, want Mumbai", out.Requirements.City)
	}
	if !strings.Contains(out.Reply, "bedrooms") {
		t.Fatalf("second reply = %q, want bedroom question", out.Reply)
	}

	out = turn(t, o, sessionID, "2BHK please")
	if out.Requirements.BHK != "2BHK" {
		t.Fatalf("BHK = %q, want 2BHK", out.Requirements.BHK)
	}
	if out.SearchPerformed {
		t.Fatal("search ran before confirmation")
	}

	out = turn(t, o, sessionID, "my budget is around 65 lakh")
	if out.Requirements.Budget != "65 Lakh" {
		t.Fatalf("Budget = %q, want 65 Lakh", out.Requirements.Budget)
	}
	if !out.Requirements.WaitingForConfirmation {
		t.Fatal("WaitingForConfirmation = false once complete, want true")
	}
	if !strings.Contains(out.Reply, "Just to confirm") {
		t.Fatalf("confirmation reply = %q", out.Reply)
	}
	if out.SearchPerformed {
		t.Fatal("search ran on the confirmation question turn")
	}

	out = turn(t, o, sessionID, "yes, go ahead")
	if !out.Requirements.Confirmed {
		t.Fatal("Confirmed = false after affirmation, want true")
	}
	if !out.SearchPerformed {
		t.Fatal("SearchPerformed = false after affirmation, want true")
	}
	if len(out.SearchResults) != 1 || out.SearchResults[0].Title != "2BHK in Andheri" {
		t.Fatalf("SearchResults = %#v", out.SearchResults)
	}

	if len(searcher.queries) != 1 {
		t.Fatalf("search calls = %d, want exactly 1", len(searcher.queries))
	}
	if searcher.queries[0] != "buy 2BHK Mumbai 65 Lakh site:housing.com" {
		t.Fatalf("query = %q", searcher.queries[0])
	}

	st, err := store.Load(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.SearchAttempts != 1 {
		t.Fatalf("SearchAttempts = %d, want 1", st.SearchAttempts)
	}
	if st.Stage != statex.StagePresentingResults {
		t.Fatalf("Stage = %q, want %q", st.Stage, statex.StagePresentingResults)
	}
}

func TestHandleTurnSearchWithoutBudget(t *testing.T) {
	t.Parallel()

	o, _, searcher, _ := newTestOrchestrator(t)
	const sessionID = "session-no-budget"

	turn(t, o, sessionID, "I want to buy a flat")
	turn(t, o, sessionID, "In Mumbai")

	out := turn(t, o, sessionID, "2BHK please")
	if !out.Requirements.WaitingForConfirmation {
		t.Fatal("WaitingForConfirmation = false with mandatory slots filled, want true")
	}
	if !strings.Contains(out.Reply, "Just to confirm") {
		t.Fatalf("reply = %q, want confirmation question even without a budget", out.Reply)
	}
	if out.SearchPerformed {
		t.Fatal("search ran before confirmation")
	}

	out = turn(t, o, sessionID, "yes")
	if !out.Requirements.Confirmed {
		t.Fatal("Confirmed = false after affirmation, want true")
	}
	if !out.SearchPerformed {
		t.Fatal("SearchPerformed = false after affirmation without budget, want true")
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("search calls = %d, want exactly 1", len(searcher.queries))
	}
	if searcher.queries[0] != "buy 2BHK Mumbai site:housing.com" {
		t.Fatalf("query = %q", searcher.queries[0])
	}
}

func TestHandleTurnVoiceCarriesAudio(t *testing.T) {
	t.Parallel()

	o, _, _, _ := newTestOrchestrator(t)

	out, err := o.HandleTurn(context.Background(), contractx.TurnInput{
		SessionID: "voice-1",
		Utterance: "hello",
		Voice:     true,
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Audio == nil || out.Audio.Text != out.Reply {
		t.Fatalf("Audio = %#v, want descriptor carrying the reply", out.Audio)
	}
}

func TestHandleTurnEndsCallOnTerminalReply(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	searcher := &fakeSearcher{}
	strategy := closingStrategy{}

	o, err := New(store, strategy, searcher, nil, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := o.HandleTurn(context.Background(), contractx.TurnInput{
		SessionID: "call-1",
		Utterance: "no thanks, i am not interested",
		Voice:     true,
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if !out.CallEnded {
		t.Fatal("CallEnded = false for terminal reply, want true")
	}
	if out.Outcome == nil || out.Outcome.Outcome != "Customer not interested" {
		t.Fatalf("Outcome = %#v", out.Outcome)
	}

	st, err := store.Load(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.Stage != statex.StageCallEnded {
		t.Fatalf("Stage = %q, want %q", st.Stage, statex.StageCallEnded)
	}
}

type closingStrategy struct{}

func (closingStrategy) Reply(ctx context.Context, utterance string, history []statex.Turn, reqs statex.Requirements) (string, error) {
	return "Thank you for taking the time to speak with me today. Have a wonderful day!", nil
}

func TestStartCallAttachesContext(t *testing.T) {
	t.Parallel()

	o, store, _, tel := newTestOrchestrator(t)

	dial, err := o.StartCall(context.Background(), "session-call", "+911234567890",
		&contractx.PropertyInfo{Title: "Sea View 2BHK", City: "Mumbai"},
		&contractx.CustomerInfo{Name: "Asha", PhoneNumber: "+911234567890"},
	)
	if err != nil {
		t.Fatalf("StartCall() error = %v", err)
	}
	if !dial.Success || dial.CallID != "CA123" {
		t.Fatalf("dial = %+v", dial)
	}
	if tel.lastTo != "+911234567890" || tel.lastSID != "session-call" {
		t.Fatalf("telephony saw to=%q session=%q", tel.lastTo, tel.lastSID)
	}

	st, err := store.Load(context.Background(), "session-call")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.Call == nil || st.Call.CallID != "CA123" || st.Call.Status != contractx.CallStatusQueued {
		t.Fatalf("Call = %#v", st.Call)
	}
	if st.HistoryLimit != statex.VoiceHistoryLimit {
		t.Fatalf("HistoryLimit = %d, want %d", st.HistoryLimit, statex.VoiceHistoryLimit)
	}
	if st.Property == nil || st.Property.Title != "Sea View 2BHK" {
		t.Fatalf("Property = %#v", st.Property)
	}
}

func TestStartCallValidation(t *testing.T) {
	t.Parallel()

	o, _, _, _ := newTestOrchestrator(t)

	if _, err := o.StartCall(context.Background(), "", "+91123", nil, nil); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("StartCall() error = %v, want ErrInvalidSession", err)
	}
	if _, err := o.StartCall(context.Background(), "s1", "  ", nil, nil); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("StartCall() error = %v, want ErrInvalidPhone", err)
	}
}

func TestHandleCallStatusCompletedClassifies(t *testing.T) {
	t.Parallel()

	o, store, _, _ := newTestOrchestrator(t)

	if _, err := o.StartCall(context.Background(), "session-status", "+91123", nil, nil); err != nil {
		t.Fatalf("StartCall() error = %v", err)
	}

	summary, err := o.HandleCallStatus(context.Background(), "session-status", contractx.CallStatusInProgress)
	if err != nil {
		t.Fatalf("HandleCallStatus(in-progress) error = %v", err)
	}
	if summary != nil {
		t.Fatalf("summary = %#v for in-progress, want nil", summary)
	}

	summary, err = o.HandleCallStatus(context.Background(), "session-status", contractx.CallStatusCompleted)
	if err != nil {
		t.Fatalf("HandleCallStatus(completed) error = %v", err)
	}
	if summary == nil || !summary.Ended {
		t.Fatalf("summary = %#v, want ended outcome", summary)
	}

	st, err := store.Load(context.Background(), "session-status")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.Stage != statex.StageCallEnded {
		t.Fatalf("Stage = %q, want %q", st.Stage, statex.StageCallEnded)
	}
	if st.Call.Status != contractx.CallStatusCompleted {
		t.Fatalf("Call.Status = %q, want completed", st.Call.Status)
	}
}

func TestRecordFeedbackNegativeRefinesSearch(t *testing.T) {
	t.Parallel()

	o, store, searcher, _ := newTestOrchestrator(t)
	const sessionID = "session-fb"

	st := statex.NewSessionState(sessionID, o.now())
	st.Requirements = statex.Requirements{
		PropertyType: "buy",
		City:         "Mumbai",
		BHK:          "2BHK",
		Confirmed:    true,
	}
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	results, err := o.RecordFeedback(context.Background(), sessionID, contractx.Feedback{
		Sentiment: contractx.SentimentDislike,
		Reason:    "too expensive",
	})
	if err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %#v", results)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("search calls = %d, want 1", len(searcher.queries))
	}
	if searcher.queries[0] != "buy 2BHK Mumbai affordable budget site:housing.com" {
		t.Fatalf("refined query = %q", searcher.queries[0])
	}
}

func TestRecordFeedbackPositiveDoesNotSearch(t *testing.T) {
	t.Parallel()

	o, _, searcher, _ := newTestOrchestrator(t)

	results, err := o.RecordFeedback(context.Background(), "session-fb2", contractx.Feedback{
		Sentiment: contractx.SentimentLike,
	})
	if err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}
	if results != nil {
		t.Fatalf("results = %#v, want nil", results)
	}
	if len(searcher.queries) != 0 {
		t.Fatalf("search calls = %d, want 0", len(searcher.queries))
	}
}

func TestClearSession(t *testing.T) {
	t.Parallel()

	o, store, _, _ := newTestOrchestrator(t)

	turn(t, o, "session-clear", "hello")
	if err := o.ClearSession(context.Background(), "session-clear"); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if _, err := store.Load(context.Background(), "session-clear"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Fatalf("Load() after clear error = %v, want ErrStateNotFound", err)
	}
}
