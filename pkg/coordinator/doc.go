/*
Package coordinator owns one onboarding page: the three form sub-entities and
the submission state, and the single operation that sends the form to the
guidance service.

# State Machine

	idle ──Submit──▶ loading ──▶ success | error
	success | error ──Submit──▶ loading

Every Submit clears the message, snapshots the payload and performs exactly one
call through ports.GuidanceClient. The coordinator lock is never held during
that call, so edits keep flowing while a submit is in flight. When submits
overlap, the last one to resolve decides the final state.

Resolve is the pure mapping from a client result to an Outcome and Present is
the pure rendering contract used by every front end (web, terminal, MCP).
*/
package coordinator
