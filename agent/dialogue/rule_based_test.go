package dialogue

import (
	"context"
	"strings"
	"testing"
	"time"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

func historyOf(roles ...contractx.Role) []statex.Turn {
	now := time.Now().UTC()
	turns := make([]statex.Turn, 0, len(roles))
	for _, r := range roles {
		turns = append(turns, statex.Turn{Role: r, Content: "x", Timestamp: now})
	}
	return turns
}

func TestRuleBasedIntroducesOnFirstTurn(t *testing.T) {
	t.Parallel()

	got, err := NewRuleBased().Reply(context.Background(), "hello", historyOf(contractx.RoleUser), statex.Requirements{})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !strings.Contains(got, "buy or rent") {
		t.Fatalf("Reply() = %q, want introduction asking buy or rent", got)
	}
}

func TestRuleBasedDrillsMissingSlotsInOrder(t *testing.T) {
	t.Parallel()

	history := historyOf(contractx.RoleUser, contractx.RoleAssistant, contractx.RoleUser)

	cases := []struct {
		name string
		reqs statex.Requirements
		want string
	}{
		{"no property type", statex.Requirements{}, "buy or rent"},
		{"no city", statex.Requirements{PropertyType: "buy"}, "Which city"},
		{"no bhk", statex.Requirements{PropertyType: "buy", City: "Pune"}, "bedrooms"},
	}

	for _, tc := range cases {
		got, err := NewRuleBased().Reply(context.Background(), "anything", history, tc.reqs)
		if err != nil {
			t.Fatalf("%s: Reply() error = %v", tc.name, err)
		}
		if !strings.Contains(got, tc.want) {
			t.Errorf("%s: Reply() = %q, want substring %q", tc.name, got, tc.want)
		}
	}
}

func TestRuleBasedAsksForConfirmation(t *testing.T) {
	t.Parallel()

	reqs := statex.Requirements{
		PropertyType: "buy",
		City:         "Pune",
		Locality:     "Wakad",
		BHK:          "2BHK",
		Budget:       "65 Lakh",
	}
	history := historyOf(contractx.RoleUser, contractx.RoleAssistant, contractx.RoleUser)

	got, err := NewRuleBased().Reply(context.Background(), "budget is 65 lakh", history, reqs)
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	want := "Just to confirm, you're buying a 2BHK in Wakad, Pune with budget 65 Lakh. Shall I search for matching properties?"
	if got != want {
		t.Fatalf("Reply() = %q, want %q", got, want)
	}
}

func TestRuleBasedConfirmsWithoutBudget(t *testing.T) {
	t.Parallel()

	reqs := statex.Requirements{
		PropertyType: "buy",
		City:         "Mumbai",
		BHK:          "2BHK",
	}
	history := historyOf(contractx.RoleUser, contractx.RoleAssistant, contractx.RoleUser)

	got, err := NewRuleBased().Reply(context.Background(), "2bhk", history, reqs)
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !strings.Contains(got, "Just to confirm, you're buying a 2BHK in Mumbai.") {
		t.Fatalf("Reply() = %q, want confirmation question despite missing budget", got)
	}
	if !strings.Contains(got, "share a budget") {
		t.Fatalf("Reply() = %q, want optional budget nudge", got)
	}
}

func TestRuleBasedConfirmedRepliesWithSearchCue(t *testing.T) {
	t.Parallel()

	reqs := statex.Requirements{
		PropertyType: "buy",
		City:         "Mumbai",
		BHK:          "2BHK",
		Confirmed:    true,
	}
	history := historyOf(contractx.RoleUser, contractx.RoleAssistant, contractx.RoleUser)

	got, err := NewRuleBased().Reply(context.Background(), "yes", history, reqs)
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !strings.Contains(got, "search") {
		t.Fatalf("Reply() = %q, want a reply carrying a search cue", got)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		reqs statex.Requirements
		want string
	}{
		{
			statex.Requirements{PropertyType: "buy", City: "Pune", Locality: "Wakad", BHK: "2BHK", Budget: "65 Lakh"},
			"buying a 2BHK in Wakad, Pune with budget 65 Lakh",
		},
		{
			statex.Requirements{PropertyType: "rent", City: "Mumbai", BHK: "1BHK"},
			"renting a 1BHK in Mumbai",
		},
		{
			statex.Requirements{PropertyType: "buy", City: "Delhi"},
			"buying a property in Delhi",
		},
	}

	for _, tc := range cases {
		if got := Summarize(tc.reqs); got != tc.want {
			t.Errorf("Summarize(%+v) = %q, want %q", tc.reqs, got, tc.want)
		}
	}
}
