// Package router selects which tool service, if any, handles a user
// utterance. Scoring is pure and side-effect free; at most one service
// executes per request, and ambiguity always defers to the conversational
// fallback rather than guessing.
package router

import "context"

// Descriptor declares a service's identity and matching surface. The
// registry snapshots descriptors at startup; Enabled is a configuration-time
// toggle, not a runtime API.
type Descriptor struct {
	// Name uniquely identifies the service in the registry.
	Name string
	// Description is a human-readable summary, also exported over MCP.
	Description string
	// Capabilities are intent tags this service can satisfy.
	Capabilities []string
	// Keywords are trigger substrings matched against the utterance.
	Keywords []string
	// Enabled services participate in routing; disabled ones are skipped.
	Enabled bool
}

// Service is the capability contract every registered tool implements.
type Service interface {
	// Descriptor returns the static declaration for this service.
	Descriptor() Descriptor

	// Score returns the service's confidence in [0, 1] that it can satisfy
	// the request, 0 meaning "cannot handle". Implementations must be pure:
	// no network calls, no side effects, never fail, and identical
	// (request, registry) inputs must yield identical scores.
	Score(req *Request) float64

	// Execute performs the service's one external call for this request.
	// It must honor the context deadline and return a ServiceError (or a
	// context error) on failure. Retries are the remote client's concern,
	// not this layer's.
	Execute(ctx context.Context, req *Request) (*Payload, error)
}
