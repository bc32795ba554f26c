package serp

import (
	"context"
	"strings"
	"testing"
)

func TestSearchFallsBackWithoutAPIKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{}, nil)
	got := client.Search(context.Background(), "buy 2BHK Mumbai site:housing.com")

	if len(got) != 3 {
		t.Fatalf("len(results) = %d, want 3 mock listings", len(got))
	}
	for _, r := range got {
		if !strings.Contains(r.Snippet, "buy 2BHK Mumbai site:housing.com") {
			t.Fatalf("snippet = %q, want it to carry the query", r.Snippet)
		}
		if !strings.HasPrefix(r.Link, "https://housing.com/") {
			t.Fatalf("link = %q, want housing.com listing", r.Link)
		}
	}
}

func TestSearchFallsBackOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(Config{APIKey: "key"}, nil)
	got := client.Search(ctx, "rent 1BHK Pune site:housing.com")
	if len(got) != 3 {
		t.Fatalf("len(results) = %d, want 3 mock listings", len(got))
	}
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Engine: "  ", Num: -1}, nil)
	if client.engine != "google" {
		t.Fatalf("engine = %q, want google", client.engine)
	}
	if client.num != 10 {
		t.Fatalf("num = %d, want 10", client.num)
	}
}
