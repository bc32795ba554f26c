package outcome

import (
	"testing"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

func TestShouldEndCall(t *testing.T) {
	t.Parallel()

	cases := []struct {
		reply string
		want  bool
	}{
		{"Thank you for taking the time to speak with me today. Have a wonderful day!", true},
		{"Okay, I'll call you back later this week.", true},
		{"Goodbye and all the best!", true},
		{"This 2BHK in Wakad fits your budget nicely.", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ShouldEndCall(tc.reply); got != tc.want {
			t.Errorf("ShouldEndCall(%q) = %v, want %v", tc.reply, got, tc.want)
		}
	}
}

func turns(contents ...string) []statex.Turn {
	out := make([]statex.Turn, 0, len(contents))
	for i, c := range contents {
		role := contractx.RoleUser
		if i%2 == 1 {
			role = contractx.RoleAssistant
		}
		out = append(out, statex.Turn{Role: role, Content: c})
	}
	return out
}

func TestClassifyPriorities(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		history []statex.Turn
		want    string
	}{
		{
			"visit beats refusal",
			turns("i am not interested in that one", "shall we schedule a site visit?", "yes schedule it", "great"),
			"Site visit scheduled",
		},
		{
			"refusal beats callback",
			turns("i am not interested", "understood", "maybe call back some other time", "sure"),
			"Customer not interested",
		},
		{
			"callback",
			turns("busy right now", "no problem", "please call back tomorrow", "will do"),
			"Follow-up call requested",
		},
		{
			"default",
			turns("tell me about the flat", "it has two bedrooms", "what floor", "fifth floor"),
			"Discussed property details",
		},
	}

	for _, tc := range cases {
		got := Classify(tc.history)
		if got.Outcome != tc.want {
			t.Errorf("%s: Outcome = %q, want %q", tc.name, got.Outcome, tc.want)
		}
		if !got.Ended {
			t.Errorf("%s: Ended = false, want true", tc.name)
		}
	}
}

func TestClassifyScansTrailingWindowOnly(t *testing.T) {
	t.Parallel()

	history := turns(
		"let's schedule a site visit",
		"noted",
		"actually i am not interested anymore",
		"understood",
		"please just send details",
		"sure thing",
	)

	got := Classify(history)
	if got.Outcome != "Customer not interested" {
		t.Fatalf("Outcome = %q, want Customer not interested", got.Outcome)
	}
}

func TestClassifyDuration(t *testing.T) {
	t.Parallel()

	if got := Classify(nil).DurationMinutes; got != 1 {
		t.Fatalf("DurationMinutes for empty history = %d, want 1", got)
	}
	if got := Classify(turns("a", "b", "c", "d", "e", "f")).DurationMinutes; got != 3 {
		t.Fatalf("DurationMinutes for 6 turns = %d, want 3", got)
	}
}
