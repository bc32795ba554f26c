package contract

import "context"

// Searcher is the paid external property search. Implementations own their
// fallback: Search never fails from the caller's perspective, an empty slice
// is a valid result.
type Searcher interface {
	Search(ctx context.Context, query string) []SearchResult
}

// Synthesizer turns a reply into speech. Implementations must return a usable
// descriptor even when the upstream provider is unavailable (text fallback).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) *AudioDescriptor
}

// Telephony places outbound calls and is paired with status webhook delivery.
type Telephony interface {
	InitiateCall(ctx context.Context, phoneNumber, sessionID string, property *PropertyInfo, customer *CustomerInfo) (CallDial, error)
}
