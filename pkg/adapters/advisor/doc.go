// Package advisor implements ports.Advisor.
//
// Heuristic is an offline, deterministic advisor used by default and in tests.
// OpenAI calls an OpenAI-compatible chat completions endpoint.
package advisor
