package node

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	searchx "github.com/gharmitra/gharmitra/agent/search"
	statex "github.com/gharmitra/gharmitra/agent/state"
)

// maxResultsReturned caps how many results travel back to the front end; the
// audit trail keeps everything.
const maxResultsReturned = 5

// RunSearch invokes the paid search when the trigger fires. The invocation
// and its results are appended verbatim to the search history regardless of
// outcome, including empty results.
func RunSearch(ctx context.Context, in *GraphState, searcher contractx.Searcher) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if searcher == nil || !searchx.ShouldTrigger(in.Session.Requirements, in.Reply) {
		return in, nil
	}

	query := searchx.BuildQuery(in.Session.Requirements)

	in.Session.Stage = statex.StageSearching
	results := searcher.Search(ctx, query)
	in.Session.AppendSearch(query, results, in.Now)
	in.Session.Stage = statex.StagePresentingResults

	log.Info().
		Str("session_id", in.SessionID).
		Str("query", query).
		Int("results", len(results)).
		Msg("property search performed")

	in.SearchPerformed = true
	if len(results) > maxResultsReturned {
		results = results[:maxResultsReturned]
	}
	in.SearchResults = results
	return in, nil
}
