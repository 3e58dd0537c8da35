// Package gateway abstracts the enrichment service behind a tagged outcome.
// A gateway call resolves to either a structured JSON payload or an explicit
// unavailability signal; "service not configured", transport failure, and
// malformed output are all the same Unavailable tag, never an error. Stages
// pattern-match on the tag and degrade to their deterministic fallback.
package gateway

import (
	"context"
	"encoding/json"
)

// Status tags a gateway outcome.
type Status int

const (
	// StatusStructured means Payload holds well-formed JSON.
	StatusStructured Status = iota
	// StatusUnavailable means the enrichment service could not produce a
	// structured result; Reason says why.
	StatusUnavailable
)

// Outcome is the tagged result of a gateway call.
type Outcome struct {
	Status  Status
	Payload json.RawMessage
	Reason  string
}

// Structured wraps validated JSON in an OK outcome.
func Structured(payload json.RawMessage) Outcome {
	return Outcome{Status: StatusStructured, Payload: payload}
}

// Unavailable builds the unavailability signal.
func Unavailable(reason string) Outcome {
	return Outcome{Status: StatusUnavailable, Reason: reason}
}

// Gateway is the enrichment service boundary. Generate must be bounded by a
// timeout, must honor ctx cancellation, and must never leave the caller
// suspended indefinitely.
type Gateway interface {
	Generate(ctx context.Context, systemPrompt, taskPrompt string, maxOutputTokens int) Outcome
}

// Disabled is the gateway used when no enrichment service is configured.
// Every call is the unavailability signal.
type Disabled struct{}

// Generate always reports the service as unavailable.
func (Disabled) Generate(_ context.Context, _, _ string, _ int) Outcome {
	return Unavailable("enrichment service not configured")
}
